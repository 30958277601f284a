package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gatekeeper/config"
	apimiddleware "gatekeeper/internal/delivery/api/middleware"
	"gatekeeper/internal/delivery/api/router"
	"gatekeeper/internal/delivery/api/router/handler"
	deliverycontext "gatekeeper/internal/delivery/context"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/infra/auth"
	"gatekeeper/internal/infra/persistence/memory"
	"gatekeeper/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	echo   *echo.Echo
	tokens service.TokenService
}

// newTestServer wires the real use cases against the in-memory store.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.Token.Secret = "test-secret"
	cfg.HTTP.MaxRequestBodySize = "1KB"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hasher, err := auth.NewBcryptHasherWithCost(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		UserRepo:     memory.NewUserRepository(),
		Hasher:       hasher,
		TokenService: tokens,
		Logger:       logger,
	})
	gate := impl.NewAccessGate(impl.AccessGateParams{TokenService: tokens, Logger: logger})

	e := newEcho(cfg, logger, router.RouterParams{
		AuthHandler:    handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Logger: logger}),
		UserHandler:    handler.NewUserHandler(handler.UserHandlerParams{AuthUC: authUC, Logger: logger}),
		AuthMiddleware: apimiddleware.NewAuthMiddleware(apimiddleware.AuthMiddlewareParams{Gate: gate}),
	})

	return &testServer{echo: e, tokens: tokens}
}

type envelope struct {
	Data  map[string]any `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}

	return rec, env
}

const registerBody = `{"name":"Ada","email":"ada@example.com","password":"s3cret","confirmPassword":"s3cret"}`

func (s *testServer) registerAndLogin(t *testing.T) string {
	t.Helper()

	rec, _ := s.do(t, http.MethodPost, "/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := s.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"s3cret"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	token, ok := env.Data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	return token
}

func TestServer_PublicRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, env.Data["message"])
	assert.NotEmpty(t, rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.Equal(t, rec.Header().Get(deliverycontext.HeaderXRequestID), env.Meta.RequestID)

	rec, env = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", env.Data["status"])
}

func TestServer_Register(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, env.Data["message"])

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "duplicate email",
			body:     registerBody,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "USER_ALREADY_EXISTS",
		},
		{
			name:     "missing name",
			body:     `{"email":"bob@example.com","password":"p","confirmPassword":"p"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_FAILED",
		},
		{
			name:     "empty body",
			body:     `{}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_FAILED",
		},
		{
			name:     "passwords differ",
			body:     `{"name":"Bob","email":"bob@example.com","password":"a","confirmPassword":"b"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "PASSWORD_MISMATCH",
		},
		{
			name:     "malformed json",
			body:     `{"name":`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_FAILED",
		},
		{
			name:     "wrong field type",
			body:     `{"name":1,"email":"bob@example.com","password":"p","confirmPassword":"p"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := s.do(t, http.MethodPost, "/auth/register", tt.body, nil)

			assert.Equal(t, tt.wantCode, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
			assert.NotEmpty(t, env.Meta.RequestID)
		})
	}
}

func TestServer_RegisterWithoutContentType(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(registerBody))
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestServer_RegisterLongPassword(t *testing.T) {
	s := newTestServer(t)
	password := strings.Repeat("a", 80)

	body := `{"name":"Ann","email":"ann@example.com","password":"` + password + `","confirmPassword":"` + password + `"}`
	rec, _ := s.do(t, http.MethodPost, "/auth/register", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := s.do(t, http.MethodPost, "/auth/login", `{"email":"ann@example.com","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, env.Data["token"])
}

func TestServer_RegisterBodyTooLarge(t *testing.T) {
	s := newTestServer(t)

	body := `{"name":"` + strings.Repeat("a", 2048) + `"}`
	rec, _ := s.do(t, http.MethodPost, "/auth/register", body, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServer_Login(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing password",
			body:     `{"email":"ada@example.com"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_FAILED",
		},
		{
			name:     "unknown email",
			body:     `{"email":"nobody@example.com","password":"s3cret"}`,
			wantCode: http.StatusNotFound,
			wantErr:  "USER_NOT_FOUND",
		},
		{
			name:     "wrong password",
			body:     `{"email":"ada@example.com","password":"wrong"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "INVALID_CREDENTIALS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := s.do(t, http.MethodPost, "/auth/login", tt.body, nil)

			assert.Equal(t, tt.wantCode, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
			assert.Nil(t, env.Data)
		})
	}

	t.Run("success", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"s3cret"}`, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		token, ok := env.Data["token"].(string)
		require.True(t, ok)

		claims, err := s.tokens.Verify(token)
		require.NoError(t, err)
		assert.NotEqual(t, "", claims.UserID.String())
	})
}

func TestServer_ProtectedUser(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t)

	claims, err := s.tokens.Verify(token)
	require.NoError(t, err)
	userPath := "/user/" + claims.UserID.String()

	t.Run("no authorization header", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, userPath, "", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ACCESS_DENIED", env.Error.Code)
	})

	t.Run("scheme without token", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, userPath, "", map[string]string{"Authorization": "Bearer"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("forged token", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, userPath, "", map[string]string{"Authorization": "Bearer " + token + "x"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_TOKEN", env.Error.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, userPath, "", map[string]string{"Authorization": "Bearer " + token})

		require.Equal(t, http.StatusOK, rec.Code)
		user, ok := env.Data["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, claims.UserID.String(), user["id"])
		assert.Equal(t, "Ada", user["name"])
		assert.Equal(t, "ada@example.com", user["email"])
		assert.NotContains(t, rec.Body.String(), "password")
		assert.NotContains(t, rec.Body.String(), "$2a$")
	})

	t.Run("unknown user", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, "/user/0190a4f2-0000-7000-8000-000000000000", "", map[string]string{"Authorization": "Bearer " + token})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "USER_NOT_FOUND", env.Error.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, "/user/not-a-uuid", "", map[string]string{"Authorization": "Bearer " + token})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
