package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"giftwise/internal/logger"
)

// State is where a Session is in its lifecycle.
type State int

// Session states.
const (
	StateUnauthenticated State = iota
	StateRestoring
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrNotAuthenticated is returned by calls that need a session when there is
// none.
var ErrNotAuthenticated = errors.New("not logged in")

// Session holds the current token and profile, attaches the token to every
// authenticated call and persists it through a TokenStore. It is safe for
// concurrent use.
//
// Login and Register run at most one at a time: identical concurrent calls
// share one request, different ones queue.
type Session struct {
	api   *Client
	store TokenStore

	mu    sync.RWMutex
	state State
	token string
	user  *User

	authMu sync.Mutex
	flight singleflight.Group

	subMu     sync.Mutex
	nextSubID int
	subs      map[int]func(State)
}

// NewSession creates an unauthenticated session. Call Restore to pick up a
// stored token.
func NewSession(api *Client, store TokenStore) *Session {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	return &Session{api: api, store: store, subs: make(map[int]func(State))}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the authenticated profile, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current token, or "" when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers fn to be called after every state change. The returned
// func removes it.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) set(state State, token string, user *User) {
	s.mu.Lock()
	changed := s.state != state
	s.state, s.token, s.user = state, token, user
	s.mu.Unlock()

	if !changed {
		return
	}
	s.subMu.Lock()
	listeners := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()
	for _, fn := range listeners {
		fn(state)
	}
}

// Restore validates a stored token. With no stored token the session stays
// unauthenticated and Restore returns nil. A token the server rejects is
// removed from the store; a transport failure keeps it for the next attempt.
// Either way the error is returned and the session ends unauthenticated.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load()
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return err
	}

	s.set(StateRestoring, "", nil)
	user, err := s.api.Validate(ctx, token)
	if err != nil {
		if rejected(err) {
			if clearErr := s.store.Clear(); clearErr != nil {
				logger.Get().Warnw("failed to clear rejected token", "error", clearErr)
			}
		}
		s.set(StateUnauthenticated, "", nil)
		return fmt.Errorf("restoring session: %w", err)
	}

	s.set(StateAuthenticated, token, user)
	return nil
}

// rejected reports whether the server refused the token itself, as opposed
// to the call failing on the way.
func rejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusNotFound
}

// Login authenticates and persists the new token.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	key := "login\x00" + strings.ToLower(strings.TrimSpace(email)) + "\x00" + password
	return s.authenticate(ctx, key, func(ctx context.Context) (*AuthResult, error) {
		return s.api.Login(ctx, email, password)
	})
}

// Register creates an account, then behaves like Login.
func (s *Session) Register(ctx context.Context, name, email, password string) (*User, error) {
	key := "register\x00" + strings.ToLower(strings.TrimSpace(email)) + "\x00" + password + "\x00" + name
	return s.authenticate(ctx, key, func(ctx context.Context) (*AuthResult, error) {
		return s.api.Register(ctx, name, email, password)
	})
}

// authenticate runs call once for all concurrent callers with the same key.
// The shared request is detached from any one caller's cancellation; each
// caller stops waiting when its own ctx is done.
func (s *Session) authenticate(ctx context.Context, key string, call func(ctx context.Context) (*AuthResult, error)) (*User, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		s.authMu.Lock()
		defer s.authMu.Unlock()

		result, err := call(shared)
		if err != nil {
			return nil, err
		}
		if err := s.store.Save(result.Token); err != nil {
			return nil, fmt.Errorf("saving token: %w", err)
		}
		user := result.User
		s.set(StateAuthenticated, result.Token, &user)
		return &user, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		u := *res.Val.(*User)
		return &u, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Logout drops the session locally and asks the server to revoke the token.
// The local state is cleared even when the server call fails; that failure
// is still returned.
func (s *Session) Logout(ctx context.Context) error {
	token := s.Token()
	s.set(StateUnauthenticated, "", nil)

	var errs []error
	if err := s.store.Clear(); err != nil {
		errs = append(errs, err)
	}
	if token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			errs = append(errs, fmt.Errorf("revoking token: %w", err))
		}
	}
	return errors.Join(errs...)
}

// expire drops a session whose token the server no longer accepts.
func (s *Session) expire(token string) {
	s.mu.RLock()
	current := s.token
	s.mu.RUnlock()
	if current != token {
		return
	}
	if err := s.store.Clear(); err != nil {
		logger.Get().Warnw("failed to clear expired token", "error", err)
	}
	s.set(StateUnauthenticated, "", nil)
}

// authorized runs call with the session token. A 401 ends the session.
func authorized[T any](ctx context.Context, s *Session, call func(ctx context.Context, token string) (T, error)) (T, error) {
	var zero T
	token := s.Token()
	if token == "" {
		return zero, ErrNotAuthenticated
	}
	result, err := call(ctx, token)
	if err != nil {
		if IsUnauthorized(err) {
			s.expire(token)
		}
		return zero, err
	}
	return result, nil
}

func authorizedErr(ctx context.Context, s *Session, call func(ctx context.Context, token string) error) error {
	_, err := authorized(ctx, s, func(ctx context.Context, token string) (struct{}, error) {
		return struct{}{}, call(ctx, token)
	})
	return err
}

// People lists the user's people.
func (s *Session) People(ctx context.Context) ([]Person, error) {
	return authorized(ctx, s, s.api.ListPeople)
}

// AddPerson creates a person.
func (s *Session) AddPerson(ctx context.Context, in PersonInput) (*Person, error) {
	return authorized(ctx, s, func(ctx context.Context, token string) (*Person, error) {
		return s.api.CreatePerson(ctx, token, in)
	})
}

// RemovePerson deletes a person.
func (s *Session) RemovePerson(ctx context.Context, id string) error {
	return authorizedErr(ctx, s, func(ctx context.Context, token string) error {
		return s.api.DeletePerson(ctx, token, id)
	})
}

// Gifts lists the user's gifts matching q.
func (s *Session) Gifts(ctx context.Context, q GiftQuery) ([]Gift, error) {
	return authorized(ctx, s, func(ctx context.Context, token string) ([]Gift, error) {
		return s.api.ListGifts(ctx, token, q)
	})
}

// AddGift records a gift.
func (s *Session) AddGift(ctx context.Context, in GiftInput) (*Gift, error) {
	return authorized(ctx, s, func(ctx context.Context, token string) (*Gift, error) {
		return s.api.CreateGift(ctx, token, in)
	})
}

// SetGiftStatus moves a gift to status.
func (s *Session) SetGiftStatus(ctx context.Context, id, status string) (*Gift, error) {
	return authorized(ctx, s, func(ctx context.Context, token string) (*Gift, error) {
		return s.api.SetGiftStatus(ctx, token, id, status)
	})
}

// RemoveGift deletes a gift.
func (s *Session) RemoveGift(ctx context.Context, id string) error {
	return authorizedErr(ctx, s, func(ctx context.Context, token string) error {
		return s.api.DeleteGift(ctx, token, id)
	})
}

// Occasions lists the user's occasions.
func (s *Session) Occasions(ctx context.Context) ([]Occasion, error) {
	return authorized(ctx, s, s.api.ListOccasions)
}

// AddOccasion creates an occasion.
func (s *Session) AddOccasion(ctx context.Context, in OccasionInput) (*Occasion, error) {
	return authorized(ctx, s, func(ctx context.Context, token string) (*Occasion, error) {
		return s.api.CreateOccasion(ctx, token, in)
	})
}

// Budgets lists the user's budgets.
func (s *Session) Budgets(ctx context.Context) ([]Budget, error) {
	return authorized(ctx, s, s.api.ListBudgets)
}

// AddBudget creates a budget.
func (s *Session) AddBudget(ctx context.Context, in BudgetInput) (*Budget, error) {
	return authorized(ctx, s, func(ctx context.Context, token string) (*Budget, error) {
		return s.api.CreateBudget(ctx, token, in)
	})
}
