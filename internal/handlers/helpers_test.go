package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"giftwise/internal/auth"
	"giftwise/internal/middleware"
	"giftwise/internal/models"
	"giftwise/internal/validator"
)

const (
	testUserID  = "0190b6a2-0000-7000-8000-000000000001"
	testOtherID = "0190b6a2-0000-7000-8000-000000000002"
)

// --- mock services ---

type mockAuthenticator struct {
	registerFn func(ctx context.Context, name, email, password string) (*models.User, *auth.Token, error)
	loginFn    func(ctx context.Context, email, password string) (*models.User, *auth.Token, error)
	verifyFn   func(tokenString string) (*auth.Claims, error)
}

func (m *mockAuthenticator) Register(ctx context.Context, name, email, password string) (*models.User, *auth.Token, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return &models.User{}, &auth.Token{}, nil
}

func (m *mockAuthenticator) Login(ctx context.Context, email, password string) (*models.User, *auth.Token, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &models.User{}, &auth.Token{}, nil
}

func (m *mockAuthenticator) VerifyToken(tokenString string) (*auth.Claims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(tokenString)
	}
	return &auth.Claims{}, nil
}

type mockRevocationService struct {
	revokeFn func(ctx context.Context, jti, userID string, expiresAt time.Time) error
}

func (m *mockRevocationService) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, jti, userID, expiresAt)
	}
	return nil
}

func (m *mockRevocationService) IsRevoked(context.Context, string) (bool, error) {
	return false, nil
}

type mockAuditService struct{}

func (m *mockAuditService) Log(context.Context, string, string, string, string, string, map[string]interface{}) {
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	if result["code"] != code {
		t.Errorf("expected error code %q, got %v (body: %v)", code, result["code"], result)
	}
	if _, ok := result["message"].(string); !ok {
		t.Errorf("expected a message in the error body, got %v", result)
	}
}
