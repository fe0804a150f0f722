// Package identity talks to the hosted identity provider's admin API with the
// service-role credential.
package identity

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/spec-kit/stall-admin/internal/domain"
)

// Provider is the subset of the identity provider the gateway depends on.
type Provider interface {
	GetUser(ctx context.Context, accessToken string) (*domain.Identity, error)
	CreateUser(ctx context.Context, email, password string) (*domain.Identity, error)
	GetUserByID(ctx context.Context, id string) (*domain.Identity, error)
	DeleteUser(ctx context.Context, id string) error
	ResendSignup(ctx context.Context, email, redirectTo string) error
}

// APIError is a non-2xx answer from the provider. Message is what the provider
// said, suitable for passing back to the caller.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Client is a resty based Provider.
type Client struct {
	http       *resty.Client
	serviceKey string
}

// NewClient builds a client for the provider rooted at baseURL.
func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/auth/v1").
		SetHeader("apikey", serviceKey).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Client{http: rc, serviceKey: serviceKey}
}

type userResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	LastSignInAt     *time.Time `json:"last_sign_in_at"`
}

func (u userResponse) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:               u.ID,
		Email:            u.Email,
		EmailConfirmedAt: u.EmailConfirmedAt,
		LastSignInAt:     u.LastSignInAt,
	}
}

// errorResponse covers the shapes the provider uses for failures.
type errorResponse struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// GetUser resolves an end-user access token to its identity.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	var out userResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&out).
		SetError(&errorResponse{}).
		Get("/user")
	if err := check(resp, err, "get user"); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// CreateUser registers an unconfirmed identity.
func (c *Client) CreateUser(ctx context.Context, email, password string) (*domain.Identity, error) {
	var out userResponse
	resp, err := c.admin(ctx).
		SetBody(map[string]any{
			"email":         email,
			"password":      password,
			"email_confirm": false,
		}).
		SetResult(&out).
		Post("/admin/users")
	if err := check(resp, err, "create user"); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// GetUserByID reads an identity by id.
func (c *Client) GetUserByID(ctx context.Context, id string) (*domain.Identity, error) {
	var out userResponse
	resp, err := c.admin(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		Get("/admin/users/{id}")
	if err := check(resp, err, "get user by id"); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// DeleteUser removes an identity.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	resp, err := c.admin(ctx).
		SetPathParam("id", id).
		Delete("/admin/users/{id}")
	return check(resp, err, "delete user")
}

// ResendSignup triggers another signup confirmation email.
func (c *Client) ResendSignup(ctx context.Context, email, redirectTo string) error {
	req := c.admin(ctx).
		SetBody(map[string]string{"type": "signup", "email": email})
	if redirectTo != "" {
		req.SetQueryParam("redirect_to", redirectTo)
	}
	resp, err := req.Post("/resend")
	return check(resp, err, "resend signup")
}

func (c *Client) admin(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(c.serviceKey).
		SetError(&errorResponse{})
}

// check converts transport failures into wrapped errors and non-2xx answers
// into *APIError.
func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return errors.Wrapf(err, "identity: %s", op)
	}
	if !resp.IsError() {
		return nil
	}
	msg := ""
	if body, ok := resp.Error().(*errorResponse); ok && body != nil {
		msg = body.text()
	}
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}
