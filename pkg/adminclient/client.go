// Package adminclient calls the admin staff gateway on behalf of a signed-in
// operator.
package adminclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Errors returned before any request is sent. Their text is shown to operators as-is.
var (
	ErrNoBaseURL     = errors.New("Admin API base URL is not configured. Set ADMIN_API_URL or ensure SUPABASE_URL is valid.")
	ErrNotSignedIn   = errors.New("You must be signed in to perform this action.")
	ErrMissingUserID = errors.New("User ID is required to fetch auth status.")
)

// RequestError is a non-2xx answer from the gateway. Its text is the response
// body, which the gateway keeps human-readable.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("Admin API request failed with status %d", e.Status)
}

// TokenSource yields the caller's access token. An empty token means the
// caller is not signed in.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken wraps a fixed access token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// Config configures a Client. BaseURL wins over SupabaseURL.
type Config struct {
	BaseURL     string
	SupabaseURL string
	Token       TokenSource
	Timeout     time.Duration
}

// Client is the admin gateway client.
type Client struct {
	http    *resty.Client
	baseURL string
	token   TokenSource
}

// New builds a client. The base URL is resolved once; requests fail with
// ErrNoBaseURL when none could be determined.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DeriveBaseURL(cfg.SupabaseURL)
	}
	base = strings.TrimRight(base, "/")

	rc := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	token := cfg.Token
	if token == nil {
		token = StaticToken("")
	}
	return &Client{http: rc, baseURL: base, token: token}
}

// BaseURL returns the resolved gateway root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DeriveBaseURL maps a hosted project URL to its functions endpoint.
// Hosted projects use the dedicated functions host; anything else is
// assumed to serve functions under /functions/v1.
func DeriveBaseURL(supabaseURL string) string {
	if supabaseURL == "" {
		return ""
	}
	u, err := url.Parse(supabaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	if host := u.Hostname(); strings.HasSuffix(host, ".supabase.co") {
		fnHost := strings.TrimSuffix(host, ".supabase.co") + ".functions.supabase.co"
		if port := u.Port(); port != "" {
			fnHost += ":" + port
		}
		return u.Scheme + "://" + fnHost + "/admin-staff"
	}
	return u.Scheme + "://" + u.Host + "/functions/v1/admin-staff"
}

// CreateStaffRequest is the body of a create call.
type CreateStaffRequest struct {
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	FullName      string  `json:"fullName"`
	ContactNumber *string `json:"contactNumber"`
	StallID       *string `json:"stallId"`
}

// CreateStaffResponse is returned on success.
type CreateStaffResponse struct {
	UserID           string `json:"userId"`
	ConfirmationSent bool   `json:"confirmationSent"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthStatus is the identity-side state of an account.
type AuthStatus struct {
	EmailConfirmedAt *time.Time `json:"emailConfirmedAt"`
	LastSignInAt     *time.Time `json:"lastSignInAt"`
}

// CreateStaffAccount creates an unconfirmed staff account.
func (c *Client) CreateStaffAccount(ctx context.Context, req CreateStaffRequest) (*CreateStaffResponse, error) {
	var out CreateStaffResponse
	ok, err := c.do(ctx, http.MethodPost, "/staff", nil, req, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// ResendStaffInvite sends another confirmation email.
func (c *Client) ResendStaffInvite(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	ok, err := c.do(ctx, http.MethodPost, "/staff/resend-invite", nil, map[string]string{"email": email}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// DeleteStaffAccount removes the account and its profile.
func (c *Client) DeleteStaffAccount(ctx context.Context, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/staff/{id}", map[string]string{"id": userID}, nil, nil)
	return err
}

// FetchUserAuthStatus reads confirmation and last sign-in timestamps.
func (c *Client) FetchUserAuthStatus(ctx context.Context, userID string) (*AuthStatus, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	var out AuthStatus
	ok, err := c.do(ctx, http.MethodGet, "/staff/{id}/auth", map[string]string{"id": userID}, nil, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// do executes one call. It reports false with a nil error for 204 answers.
func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, out interface{}) (bool, error) {
	if c.baseURL == "" {
		return false, ErrNoBaseURL
	}
	token, err := c.token(ctx)
	if err != nil {
		return false, errors.Wrap(err, "adminclient: token")
	}
	if token == "" {
		return false, ErrNotSignedIn
	}

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParams(params)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return false, errors.Wrapf(err, "adminclient: %s %s", method, path)
	}
	if resp.IsError() {
		return false, &RequestError{Status: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	if resp.StatusCode() == http.StatusNoContent || out == nil {
		return false, nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return false, errors.Wrap(err, "adminclient: decode response")
	}
	return true, nil
}
