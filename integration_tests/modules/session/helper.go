package sessionintegrationtests

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/integration_tests/testutils"
)

// Global variables for the test environment, initialized once.
var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// TestDeps holds dependencies needed by individual tests.
type TestDeps struct {
	Ctx       context.Context
	Repo      sessiondb.Repository
	Groups    groupdb.Repository
	BunDB     *bun.DB
	GroupUUID uuid.UUID
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing session test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
		} else {
			testEnv = env
		}
	})

	if testEnvErr != nil {
		t.Fatalf("Session test environment initialization failed: %v", testEnvErr)
	}
	if testEnv == nil {
		t.Fatalf("Session test environment not initialized")
	}

	return testEnv
}

// SetupTestSessionRepo resets the tables and seeds one group for the
// sessions under test to hang off.
func SetupTestSessionRepo(t *testing.T) TestDeps {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer resetCancel()
	if err := env.ResetTables(resetCtx); err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}

	group := &groupdb.Group{
		UUID:    uuid.New(),
		Name:    "session test club",
		Members: []string{"Alice", "Bob", "Chika", "Daiki"},
	}
	if err := env.GroupRepo.Create(env.Ctx, nil, group); err != nil {
		t.Fatalf("Failed to seed group: %v", err)
	}

	return TestDeps{
		Ctx:       env.Ctx,
		Repo:      env.SessionRepo,
		Groups:    env.GroupRepo,
		BunDB:     env.DB,
		GroupUUID: group.UUID,
	}
}
