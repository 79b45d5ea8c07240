package groupinvites

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Errors returned when parsing invite tokens.
var (
	ErrInvalidToken = errors.New("invalid invite token")
	ErrExpiredToken = errors.New("invite token expired")
)

// Claims are the signed contents of a group invite link.
type Claims struct {
	GroupUUID string `json:"group_uuid"`
	jwt.RegisteredClaims
}

// Provider signs and verifies group invite tokens (HS256).
type Provider struct {
	secret     []byte
	defaultTTL time.Duration
	baseURL    string
}

// NewProvider creates an invite token provider.
func NewProvider(secret string, defaultTTL time.Duration, baseURL string) *Provider {
	return &Provider{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CreateInvite returns a signed token for the group and the join link to
// hand to the invitee.
func (p *Provider) CreateInvite(groupUUID uuid.UUID) (token, link string, err error) {
	now := time.Now()
	claims := Claims{
		GroupUUID: groupUUID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "seisan-api",
			Subject:   "group-invite",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.defaultTTL)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign invite token: %w", err)
	}

	return token, fmt.Sprintf("%s/join?token=%s", p.baseURL, token), nil
}

// ParseInvite validates a token and returns the group it invites to.
func (p *Provider) ParseInvite(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject != "group-invite" {
		return uuid.Nil, ErrInvalidToken
	}

	groupUUID, err := uuid.Parse(claims.GroupUUID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return groupUUID, nil
}
