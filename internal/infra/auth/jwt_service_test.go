package auth

import (
	"strings"
	"testing"
	"time"

	"gatekeeper/config"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_very_long_for_testing"

func newTestTokenConfig() *config.Config {
	return &config.Config{
		Token: config.TokenConfig{Secret: testSecret},
	}
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	jwtService, err := NewJWTService(newTestTokenConfig())
	require.NoError(t, err)

	userID := uuid.New()

	token, err := jwtService.Issue(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := jwtService.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Nil(t, claims.ExpiresAt)
}

func TestJWTService_NoTTLIsDeterministic(t *testing.T) {
	jwtService, err := NewJWTService(newTestTokenConfig())
	require.NoError(t, err)

	userID := uuid.New()
	first, err := jwtService.Issue(userID)
	require.NoError(t, err)
	second, err := jwtService.Issue(userID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestJWTService_VerifyRejections(t *testing.T) {
	jwtService, err := NewJWTService(newTestTokenConfig())
	require.NoError(t, err)

	other, err := NewJWTService(&config.Config{Token: config.TokenConfig{Secret: "another_secret"}})
	require.NoError(t, err)

	userID := uuid.New()
	valid, err := jwtService.Issue(userID)
	require.NoError(t, err)
	foreign, err := other.Issue(userID)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, service.Claims{UserID: userID}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512Token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, service.Claims{UserID: userID}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "clearly-not-a-jwt-token-format"},
		{name: "foreign secret", token: foreign},
		{name: "alg none", token: noneToken},
		{name: "unexpected algorithm", token: hs512Token},
		{name: "missing user id", token: noSubject},
		{name: "tampered signature", token: tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := jwtService.Verify(tt.token)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
		})
	}
}

func TestJWTService_TTLAndIssuer(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tokenCfg := config.TokenConfig{Secret: testSecret, Issuer: "gatekeeper", TTL: time.Hour}
	jwtService := newJWTService(tokenCfg, clock)

	userID := uuid.New()
	token, err := jwtService.Issue(userID)
	require.NoError(t, err)

	claims, err := jwtService.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "gatekeeper", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	// Another issuer with the same secret is rejected.
	otherIssuer := newJWTService(config.TokenConfig{Secret: testSecret, Issuer: "someone-else"}, clock)
	_, err = otherIssuer.Verify(token)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))

	// Advance the clock past expiry.
	now = now.Add(2 * time.Hour)
	_, err = jwtService.Verify(token)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
}

func TestJWTService_EmptySecret(t *testing.T) {
	jwtService, err := NewJWTService(&config.Config{})
	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "jwt secret must be provided")
}
