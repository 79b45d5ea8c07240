package groupintegrationtests

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/integration_tests/testutils"
	"github.com/uptrace/bun"
)

// Global variables for the test environment, initialized once.
var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// TestDeps holds dependencies needed by individual tests.
type TestDeps struct {
	Ctx   context.Context
	Repo  groupdb.Repository
	BunDB *bun.DB
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing group test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
		} else {
			testEnv = env
		}
	})

	if testEnvErr != nil {
		t.Fatalf("Group test environment initialization failed: %v", testEnvErr)
	}
	if testEnv == nil {
		t.Fatalf("Group test environment not initialized")
	}

	return testEnv
}

func SetupTestGroupRepo(t *testing.T) TestDeps {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer resetCancel()
	if err := env.ResetTables(resetCtx); err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}

	return TestDeps{
		Ctx:   env.Ctx,
		Repo:  env.GroupRepo,
		BunDB: env.DB,
	}
}
