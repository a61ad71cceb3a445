package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"giftwise/internal/config"
	"giftwise/internal/logger"
	"giftwise/internal/testutil"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) (*apiClient, *clock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init("test")

	cfg := &config.Config{
		Env:                "test",
		Port:               "0",
		CORSAllowedOrigins: []string{"*"},
		DBDriver:           config.DriverSQLite,
		JWTSecret:          "test-secret-that-is-at-least-32-bytes!",
		JWTExpirationDur:   24 * time.Hour,
		BcryptCost:         bcrypt.MinCost,
	}
	require.NoError(t, cfg.Validate())

	clk := &clock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	srv, err := New(cfg, testutil.SetupTestDB(t), Options{Now: clk.Now})
	require.NoError(t, err)

	return &apiClient{t: t, handler: srv.Handler()}, clk
}

func (a *apiClient) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (a *apiClient) register(name, email, password string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	return body["token"].(string)
}

func (a *apiClient) create(path, token string, body interface{}) string {
	a.t.Helper()
	code, out := a.do(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, code, out)
	return out["id"].(string)
}

func dataLen(t *testing.T, body map[string]interface{}) int {
	t.Helper()
	data, ok := body["data"].([]interface{})
	require.True(t, ok, "expected a data array, got %v", body)
	return len(data)
}

func TestHealthAndDocs(t *testing.T) {
	api, _ := newTestServer(t)

	code, body := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = api.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "giftwise_http_requests_total")
}

func TestRegisterLoginFlow(t *testing.T) {
	api, _ := newTestServer(t)

	api.register("Alice", "alice@example.com", "Secret123!")

	code, body := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ALICE@example.com", "password": "Secret123!",
	})
	require.Equal(t, http.StatusOK, code, body)
	token := body["token"].(string)
	assert.NotEmpty(t, body["expires_at"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	code, body = api.do(http.MethodGet, "/api/user/validate", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Alice", body["name"])

	t.Run("wrong_password", func(t *testing.T) {
		code, body := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "Secret124!",
		})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
	})

	t.Run("unknown_email_matches_wrong_password", func(t *testing.T) {
		code, body := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "nobody@example.com", "password": "Secret123!",
		})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
	})

	t.Run("multibyte_password_too_long", func(t *testing.T) {
		code, body := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Zoe", "email": "zoe@example.com", "password": strings.Repeat("é", 40),
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "INVALID_INPUT", body["code"])
		assert.NotEmpty(t, body["message"])
	})

	t.Run("duplicate_registration", func(t *testing.T) {
		code, body := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Imposter", "email": "Alice@Example.com", "password": "Another123!",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "EMAIL_TAKEN", body["code"])
	})
}

func TestAuthRequired(t *testing.T) {
	api, _ := newTestServer(t)

	for _, path := range []string{"/api/people", "/api/gifts", "/api/occasions", "/api/budgets", "/api/user/profile"} {
		code, body := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "UNAUTHORIZED", body["code"], path)
	}

	code, body := api.do(http.MethodGet, "/api/people", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestTokenExpiry(t *testing.T) {
	api, clk := newTestServer(t)
	token := api.register("Dana", "dana@example.com", "Secret123!")

	protected := []string{
		"/api/user/validate",
		"/api/user/profile",
		"/api/people",
		"/api/gifts",
		"/api/occasions",
		"/api/budgets",
	}

	clk.Advance(24*time.Hour - time.Second)
	for _, path := range protected {
		code, body := api.do(http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusOK, code, "%s: token must be valid until the last second: %v", path, body)
	}

	clk.Advance(time.Second)
	for _, path := range protected {
		code, body := api.do(http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "INVALID_TOKEN", body["code"], path)
	}
}

func TestOccasionDates(t *testing.T) {
	api, _ := newTestServer(t)
	token := api.register("Gus", "gus@example.com", "Secret123!")

	// 05:00 in Tokyo is 20:00 UTC on May 31.
	tokyo := api.create("/api/occasions", token, map[string]interface{}{"name": "Tokyo dinner", "date": "2026-06-01T05:00:00+09:00"})
	brunch := api.create("/api/occasions", token, map[string]interface{}{"name": "Brunch", "date": "2026-06-01T01:00:00Z"})
	supper := api.create("/api/occasions", token, map[string]interface{}{"name": "Supper", "date": "2026-06-01T19:00:00Z"})

	ids := func(body map[string]interface{}) []string {
		var out []string
		for _, item := range body["data"].([]interface{}) {
			out = append(out, item.(map[string]interface{})["id"].(string))
		}
		return out
	}

	code, body := api.do(http.MethodGet, "/api/occasions", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{tokyo, brunch, supper}, ids(body))

	code, body = api.do(http.MethodGet, "/api/occasions?from=2026-05-31T21:00:00Z", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{brunch, supper}, ids(body))

	code, body = api.do(http.MethodGet, "/api/occasions?from=2026-06-01&to=2026-06-01", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{brunch, supper}, ids(body), "a bare to date covers the whole day")

	code, body = api.do(http.MethodGet, "/api/occasions?to=2026-06-01T01:00:00Z", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{tokyo, brunch}, ids(body))
}

func TestLogoutRevokesToken(t *testing.T) {
	api, _ := newTestServer(t)
	token := api.register("Erin", "erin@example.com", "Secret123!")

	code, _ := api.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, body := api.do(http.MethodGet, "/api/user/validate", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_TOKEN", body["code"])

	// Logging out twice, or without a token, still succeeds.
	code, _ = api.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestOwnershipIsolation(t *testing.T) {
	api, _ := newTestServer(t)
	bob := api.register("Bob", "bob@example.com", "Secret123!")
	carol := api.register("Carol", "carol@example.com", "Secret123!")

	personID := api.create("/api/people", bob, map[string]interface{}{"name": "Mom", "relationship": "family"})
	occasionID := api.create("/api/occasions", bob, map[string]interface{}{
		"name": "Mom's birthday", "type": "birthday", "date": "2026-07-04T00:00:00Z", "person_id": personID,
	})
	giftID := api.create("/api/gifts", bob, map[string]interface{}{
		"recipient_id": personID, "occasion_id": occasionID, "name": "Scarf", "price": 2599,
	})
	budgetID := api.create("/api/budgets", bob, map[string]interface{}{
		"name": "Mom", "amount": 10000, "period": "yearly", "person_id": personID,
	})

	for _, path := range []string{"/api/people", "/api/gifts", "/api/occasions", "/api/budgets"} {
		code, body := api.do(http.MethodGet, path, carol, nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, 0, dataLen(t, body), "carol must not see bob's %s", path)

		code, body = api.do(http.MethodGet, path, bob, nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, 1, dataLen(t, body), path)
	}

	cases := []struct{ path, notFound string }{
		{"/api/people/" + personID, "PERSON_NOT_FOUND"},
		{"/api/gifts/" + giftID, "GIFT_NOT_FOUND"},
		{"/api/occasions/" + occasionID, "OCCASION_NOT_FOUND"},
		{"/api/budgets/" + budgetID, "BUDGET_NOT_FOUND"},
	}
	for _, tc := range cases {
		code, body := api.do(http.MethodGet, tc.path, carol, nil)
		assert.Equal(t, http.StatusNotFound, code, tc.path)
		assert.Equal(t, tc.notFound, body["code"], tc.path)

		code, _ = api.do(http.MethodPut, tc.path, carol, map[string]string{"name": "pwned"})
		assert.Equal(t, http.StatusNotFound, code, tc.path)

		code, _ = api.do(http.MethodDelete, tc.path, carol, nil)
		assert.Equal(t, http.StatusNotFound, code, tc.path)
	}

	// Bob's rows are untouched.
	code, body := api.do(http.MethodGet, "/api/gifts/"+giftID, bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Scarf", body["name"])

	t.Run("cross_user_reference", func(t *testing.T) {
		code, body := api.do(http.MethodPost, "/api/gifts", carol, map[string]interface{}{
			"recipient_id": personID, "name": "Sneaky",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "INVALID_REFERENCE", body["code"])
	})
}

func TestGiftLifecycle(t *testing.T) {
	api, _ := newTestServer(t)
	token := api.register("Frank", "frank@example.com", "Secret123!")

	code, _ := api.do(http.MethodPut, "/api/user/preferences", token, map[string]string{"currency": "EUR"})
	require.Equal(t, http.StatusOK, code)

	personID := api.create("/api/people", token, map[string]interface{}{"name": "Gran"})

	code, gift := api.do(http.MethodPost, "/api/gifts", token, map[string]interface{}{
		"recipient_id": personID, "name": "Teapot", "price": 3500,
	})
	require.Equal(t, http.StatusCreated, code, gift)
	assert.Equal(t, "planned", gift["status"])
	assert.Equal(t, "EUR", gift["currency"], "currency defaults to the user's preference")
	giftID := gift["id"].(string)

	for _, status := range []string{"purchased", "wrapped", "given"} {
		code, body := api.do(http.MethodPut, "/api/gifts/"+giftID, token, map[string]string{"status": status})
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, status, body["status"])
	}

	code, body := api.do(http.MethodGet, "/api/gifts?status=given", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, dataLen(t, body))

	// Deleting the person takes their gifts along.
	code, _ = api.do(http.MethodDelete, "/api/people/"+personID, token, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = api.do(http.MethodGet, "/api/gifts/"+giftID, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "GIFT_NOT_FOUND", body["code"])
}

func TestListIsIdempotent(t *testing.T) {
	api, _ := newTestServer(t)
	token := api.register("Gail", "gail@example.com", "Secret123!")
	for _, name := range []string{"A", "B", "C"} {
		api.create("/api/people", token, map[string]interface{}{"name": name})
	}

	_, first := api.do(http.MethodGet, "/api/people", token, nil)
	_, second := api.do(http.MethodGet, "/api/people", token, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, dataLen(t, first))

	code, page := api.do(http.MethodGet, "/api/people?page=2&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, dataLen(t, page))
	assert.Equal(t, float64(3), page["total_items"])
	assert.Equal(t, float64(2), page["total_pages"])
}

func TestCORSPreflight(t *testing.T) {
	api, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/people", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
