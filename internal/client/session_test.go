package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal stand-in for the auth endpoints.
type fakeAPI struct {
	logins         atomic.Int32
	logouts        atomic.Int32
	loginsInFlight atomic.Int32
	maxInFlight    atomic.Int32
	loginGate      chan struct{}
	loginDelay     time.Duration
	validateErr    int

	mu         sync.Mutex
	validToken string
}

func (f *fakeAPI) token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validToken
}

func (f *fakeAPI) setToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validToken = token
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	user := User{ID: "u-1", Name: "Alice", Email: "alice@example.com"}

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		n := f.loginsInFlight.Add(1)
		defer f.loginsInFlight.Add(-1)
		for {
			highest := f.maxInFlight.Load()
			if n <= highest || f.maxInFlight.CompareAndSwap(highest, n) {
				break
			}
		}
		if f.loginGate != nil {
			<-f.loginGate
		}
		time.Sleep(f.loginDelay)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "Secret123!" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "INVALID_CREDENTIALS", "message": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, AuthResult{Token: f.token(), ExpiresAt: time.Now().Add(time.Hour), User: user})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logouts.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})
	mux.HandleFunc("GET /api/user/validate", func(w http.ResponseWriter, r *http.Request) {
		if f.validateErr != 0 {
			writeJSON(w, f.validateErr, map[string]string{"code": "INTERNAL_ERROR", "message": "boom"})
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+f.token() {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "INVALID_TOKEN", "message": "Invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusOK, user)
	})
	mux.HandleFunc("GET /api/people", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.token() {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "INVALID_TOKEN", "message": "Invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusOK, Page[Person]{Data: []Person{{ID: "p-1", Name: "Mom"}}})
	})
	return mux
}

func newFakeSession(t *testing.T, f *fakeAPI, store TokenStore) *Session {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewSession(New(srv.URL, srv.Client()), store)
}

func TestSession_LoginLogout(t *testing.T) {
	f := &fakeAPI{validToken: "tok-1"}
	store := &MemoryTokenStore{}
	s := newFakeSession(t, f, store)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []State
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})
	defer unsubscribe()

	assert.Equal(t, StateUnauthenticated, s.State())
	_, err := s.People(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	user, err := s.Login(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "tok-1", s.Token())
	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored)

	people, err := s.People(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 1)

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Nil(t, s.User())
	assert.Equal(t, int32(1), f.logouts.Load())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	mu.Lock()
	assert.Equal(t, []State{StateAuthenticated, StateUnauthenticated}, seen)
	mu.Unlock()
}

func TestSession_LoginFailureIsExplicit(t *testing.T) {
	f := &fakeAPI{validToken: "tok-1"}
	s := newFakeSession(t, f, nil)

	user, err := s.Login(context.Background(), "alice@example.com", "wrong")
	assert.Nil(t, user)
	require.Error(t, err)
	assert.True(t, HasCode(err, "INVALID_CREDENTIALS"), "got %v", err)
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, s.Token())
}

func TestSession_LoginIsCoalesced(t *testing.T) {
	f := &fakeAPI{validToken: "tok-1", loginGate: make(chan struct{})}
	s := newFakeSession(t, f, nil)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Login(context.Background(), "alice@example.com", "Secret123!")
		}(i)
	}

	// Wait until the single request reaches the server, then give the other
	// callers time to join it.
	require.Eventually(t, func() bool { return f.logins.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(f.loginGate)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.logins.Load(), "concurrent logins must share one request")
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestSession_DifferentLoginsQueue(t *testing.T) {
	f := &fakeAPI{validToken: "tok-1", loginDelay: 20 * time.Millisecond}
	s := newFakeSession(t, f, nil)

	emails := []string{"alice@example.com", "bob@example.com", "carol@example.com"}
	var wg sync.WaitGroup
	errs := make([]error, len(emails))
	for i, email := range emails {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			_, errs[i] = s.Login(context.Background(), email, "Secret123!")
		}(i, email)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(len(emails)), f.logins.Load(), "different credentials are not coalesced")
	assert.Equal(t, int32(1), f.maxInFlight.Load(), "at most one login may be in flight")
}

func TestSession_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := &fakeAPI{validToken: "tok-1", loginGate: make(chan struct{})}
	s := newFakeSession(t, f, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Login(firstCtx, "alice@example.com", "Secret123!")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return f.logins.Load() == 1 }, time.Second, 5*time.Millisecond)

	secondErr := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "alice@example.com", "Secret123!")
		secondErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(f.loginGate)
	select {
	case err := <-secondErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second caller never returned")
	}
	assert.Equal(t, int32(1), f.logins.Load())
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestSession_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("no_stored_token", func(t *testing.T) {
		s := newFakeSession(t, &fakeAPI{validToken: "tok-1"}, &MemoryTokenStore{})
		require.NoError(t, s.Restore(ctx))
		assert.Equal(t, StateUnauthenticated, s.State())
	})

	t.Run("valid_token", func(t *testing.T) {
		store := &MemoryTokenStore{}
		require.NoError(t, store.Save("tok-1"))
		s := newFakeSession(t, &fakeAPI{validToken: "tok-1"}, store)

		var states []State
		s.Subscribe(func(st State) { states = append(states, st) })

		require.NoError(t, s.Restore(ctx))
		assert.Equal(t, StateAuthenticated, s.State())
		assert.Equal(t, "alice@example.com", s.User().Email)
		assert.Equal(t, []State{StateRestoring, StateAuthenticated}, states)
	})

	t.Run("rejected_token_is_cleared", func(t *testing.T) {
		store := &MemoryTokenStore{}
		require.NoError(t, store.Save("stale"))
		s := newFakeSession(t, &fakeAPI{validToken: "tok-1"}, store)

		err := s.Restore(ctx)
		require.Error(t, err)
		assert.True(t, IsUnauthorized(err))
		assert.Equal(t, StateUnauthenticated, s.State())
		_, err = store.Load()
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("server_error_keeps_token", func(t *testing.T) {
		store := &MemoryTokenStore{}
		require.NoError(t, store.Save("tok-1"))
		s := newFakeSession(t, &fakeAPI{validToken: "tok-1", validateErr: http.StatusInternalServerError}, store)

		require.Error(t, s.Restore(ctx))
		assert.Equal(t, StateUnauthenticated, s.State())
		stored, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "tok-1", stored)
	})

	t.Run("unreachable_server", func(t *testing.T) {
		store := &MemoryTokenStore{}
		require.NoError(t, store.Save("tok-1"))
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		s := NewSession(New(srv.URL, nil), store)

		err := s.Restore(ctx)
		require.Error(t, err)
		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
		assert.Equal(t, StateUnauthenticated, s.State())
		_, err = store.Load()
		assert.NoError(t, err)
	})
}

func TestSession_UnauthorizedCallEndsSession(t *testing.T) {
	f := &fakeAPI{validToken: "tok-1"}
	store := &MemoryTokenStore{}
	s := newFakeSession(t, f, store)
	ctx := context.Background()

	_, err := s.Login(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)

	// The server stops accepting the token, as after expiry.
	f.setToken("tok-2")
	_, err = s.People(ctx)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, StateUnauthenticated, s.State())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/", nil).Validate(context.Background(), "tok")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.True(t, strings.Contains(apiErr.Error(), "502"))
}
