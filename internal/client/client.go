// Package client talks to the giftwise API and keeps the caller's session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx response decoded from the {"code","message"} body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// HasCode reports whether err is an API error with the given code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client is a typed HTTP client for the giftwise API. It holds no session
// state; every authenticated call takes the bearer token explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL. A nil httpClient gets
// a client with a 30 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// A body that is not the error shape still yields a usable APIError.
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// Register creates an account and returns it with a session token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout asks the server to revoke token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// Validate returns the profile token belongs to.
func (c *Client) Validate(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/user/validate", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListPeople returns every person of the token's user, newest first.
func (c *Client) ListPeople(ctx context.Context, token string) ([]Person, error) {
	var page Page[Person]
	if err := c.do(ctx, http.MethodGet, "/api/people", token, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// CreatePerson adds a person.
func (c *Client) CreatePerson(ctx context.Context, token string, in PersonInput) (*Person, error) {
	var person Person
	if err := c.do(ctx, http.MethodPost, "/api/people", token, in, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// DeletePerson removes a person together with the gifts for them.
func (c *Client) DeletePerson(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/people/"+url.PathEscape(id), token, nil, nil)
}

// ListGifts returns the token's user's gifts matching q.
func (c *Client) ListGifts(ctx context.Context, token string, q GiftQuery) ([]Gift, error) {
	path := "/api/gifts"
	if v := q.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}
	var page Page[Gift]
	if err := c.do(ctx, http.MethodGet, path, token, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// CreateGift records a gift.
func (c *Client) CreateGift(ctx context.Context, token string, in GiftInput) (*Gift, error) {
	var gift Gift
	if err := c.do(ctx, http.MethodPost, "/api/gifts", token, in, &gift); err != nil {
		return nil, err
	}
	return &gift, nil
}

// SetGiftStatus moves a gift to status.
func (c *Client) SetGiftStatus(ctx context.Context, token, id, status string) (*Gift, error) {
	var gift Gift
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, "/api/gifts/"+url.PathEscape(id), token, body, &gift); err != nil {
		return nil, err
	}
	return &gift, nil
}

// DeleteGift removes a gift.
func (c *Client) DeleteGift(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/gifts/"+url.PathEscape(id), token, nil, nil)
}

// ListOccasions returns the token's user's occasions, soonest first.
func (c *Client) ListOccasions(ctx context.Context, token string) ([]Occasion, error) {
	var page Page[Occasion]
	if err := c.do(ctx, http.MethodGet, "/api/occasions", token, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// CreateOccasion adds an occasion.
func (c *Client) CreateOccasion(ctx context.Context, token string, in OccasionInput) (*Occasion, error) {
	var occasion Occasion
	if err := c.do(ctx, http.MethodPost, "/api/occasions", token, in, &occasion); err != nil {
		return nil, err
	}
	return &occasion, nil
}

// ListBudgets returns the token's user's budgets, newest first.
func (c *Client) ListBudgets(ctx context.Context, token string) ([]Budget, error) {
	var page Page[Budget]
	if err := c.do(ctx, http.MethodGet, "/api/budgets", token, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// CreateBudget adds a budget.
func (c *Client) CreateBudget(ctx context.Context, token string, in BudgetInput) (*Budget, error) {
	var budget Budget
	if err := c.do(ctx, http.MethodPost, "/api/budgets", token, in, &budget); err != nil {
		return nil, err
	}
	return &budget, nil
}
