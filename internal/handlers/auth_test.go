package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/citywalk/internal/auth"
	"github.com/BradenHooton/citywalk/internal/handlers"
	"github.com/BradenHooton/citywalk/internal/models"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var digest = strings.Repeat("ab", 32)

func newAuthRouter(t *testing.T, svc *handlers.MockAuthService, trusted ...string) http.Handler {
	t.Helper()
	ipConfig, err := pkghttp.NewIPConfig(trusted)
	require.NoError(t, err)

	r := chi.NewRouter()
	handlers.NewAuthHandler(svc, auth.NewTimingDelay(auth.TimingConfig{}), ipConfig).RegisterRoutes(r)
	return r
}

func TestLogin_Success(t *testing.T) {
	loginTime := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ipAddress string) (*models.LoginResult, error) {
			assert.Equal(t, "mario", username)
			assert.Equal(t, digest, password)
			return &models.LoginResult{User: testUser("mario"), LoginTime: loginTime}, nil
		},
	}

	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{Username: "mario", Password: digest})
	w := serve(newAuthRouter(t, svc), req)

	var result struct {
		User      map[string]interface{} `json:"user"`
		LoginTime time.Time              `json:"loginTime"`
	}
	handlers.AssertJSONResponse(t, w, 200, &result)
	assert.Equal(t, "mario", result.User["username"])
	assert.NotContains(t, result.User, "password")
	assert.True(t, loginTime.Equal(result.LoginTime))
}

func TestLogin_WrongPassword(t *testing.T) {
	w := serve(newAuthRouter(t, &handlers.MockAuthService{}),
		handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{Username: "mario", Password: digest}))

	resp := handlers.AssertErrorResponse(t, w, 401, "unauthorized")
	assert.Equal(t, "Invalid credentials", resp.Message)
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ipAddress string) (*models.LoginResult, error) {
			return nil, fmt.Errorf("%w: %w", models.ErrUnauthorized, models.ErrAccountInactive)
		},
	}

	w := serve(newAuthRouter(t, svc), handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{Username: "mario", Password: digest}))

	resp := handlers.AssertErrorResponse(t, w, 401, "unauthorized")
	assert.Equal(t, "Account is not active", resp.Message)
}

func TestLogin_MalformedPayload(t *testing.T) {
	svc := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ipAddress string) (*models.LoginResult, error) {
			return nil, models.NewValidationError("Password must be a valid SHA256 hash (64 characters)")
		},
	}

	w := serve(newAuthRouter(t, svc), handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{Username: "mario", Password: "plain"}))

	handlers.AssertErrorResponse(t, w, 400, "validation_error")
}

func TestLogin_PassesClientIP(t *testing.T) {
	var gotIP string
	svc := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ipAddress string) (*models.LoginResult, error) {
			gotIP = ipAddress
			return nil, models.ErrUnauthorized
		},
	}
	router := newAuthRouter(t, svc, "10.0.0.0/8")

	direct := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{Username: "mario", Password: digest})
	direct.RemoteAddr = "203.0.113.9:4000"
	direct.Header.Set("X-Forwarded-For", "1.2.3.4")
	serve(router, direct)
	assert.Equal(t, "203.0.113.9", gotIP)

	proxied := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{Username: "mario", Password: digest})
	proxied.RemoteAddr = "10.1.1.1:4000"
	proxied.Header.Set("X-Forwarded-For", "198.51.100.20")
	serve(router, proxied)
	assert.Equal(t, "198.51.100.20", gotIP)
}

func TestLogin_LimitMiddlewareAppliesOnlyToLogin(t *testing.T) {
	blocked := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests")
		})
	}
	r := chi.NewRouter()
	handlers.NewAuthHandler(&handlers.MockAuthService{}, auth.NewTimingDelay(auth.TimingConfig{}), nil).RegisterRoutes(r, blocked)

	w := serve(r, handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{Username: "mario", Password: digest}))
	handlers.AssertErrorResponse(t, w, 429, "rate_limit_exceeded")

	w = serve(r, handlers.NewTestRequest(t, "GET", "/auth/stats", nil))
	handlers.AssertJSONResponse(t, w, 200, nil)
}

func TestRegister_Success(t *testing.T) {
	svc := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, in models.RegisterInput, ipAddress string) (*models.User, error) {
			assert.Equal(t, "mario", in.Username)
			assert.Nil(t, in.Email)
			return testUser("mario"), nil
		},
	}

	req := handlers.NewTestRequest(t, "POST", "/auth/register", map[string]string{
		"name": "Mario Rossi", "username": "mario", "password": digest,
	})
	w := serve(newAuthRouter(t, svc), req)

	handlers.AssertJSONResponse(t, w, 201, nil)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, in models.RegisterInput, ipAddress string) (*models.User, error) {
			return nil, models.NewConflictError("User with this username already exists")
		},
	}

	w := serve(newAuthRouter(t, svc), handlers.NewTestRequest(t, "POST", "/auth/register", map[string]string{"username": "mario"}))

	resp := handlers.AssertErrorResponse(t, w, 400, "conflict")
	assert.Equal(t, "User with this username already exists", resp.Message)
}

func TestChangePassword_RequiresUserID(t *testing.T) {
	svc := &handlers.MockAuthService{
		ChangePasswordFunc: func(ctx context.Context, id, current, next string) error {
			t.Fatal("service should not be called")
			return nil
		},
	}

	w := serve(newAuthRouter(t, svc), handlers.NewTestRequest(t, "POST", "/auth/change-password", map[string]string{
		"currentPassword": digest, "newPassword": digest,
	}))

	resp := handlers.AssertErrorResponse(t, w, 400, "validation_error")
	assert.Equal(t, []interface{}{"userId is required"}, resp.Details)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc := &handlers.MockAuthService{
		ChangePasswordFunc: func(ctx context.Context, id, current, next string) error {
			return models.ErrUnauthorized
		},
	}

	w := serve(newAuthRouter(t, svc), handlers.NewTestRequest(t, "POST", "/auth/change-password", handlers.ChangePasswordRequest{
		UserID: "665f1c2e9b1e8a0012345678", CurrentPassword: digest, NewPassword: digest,
	}))

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
}

func TestResetPassword_Success(t *testing.T) {
	var gotID, gotNext string
	svc := &handlers.MockAuthService{
		ResetPasswordFunc: func(ctx context.Context, id, next string) error {
			gotID, gotNext = id, next
			return nil
		},
	}

	w := serve(newAuthRouter(t, svc), handlers.NewTestRequest(t, "POST", "/auth/reset-password", handlers.ResetPasswordRequest{
		UserID: "665f1c2e9b1e8a0012345678", NewPassword: digest,
	}))

	body := handlers.AssertJSONResponse(t, w, 200, nil)
	assert.Equal(t, "Password reset successfully", body.Message)
	assert.Equal(t, "665f1c2e9b1e8a0012345678", gotID)
	assert.Equal(t, digest, gotNext)
}
