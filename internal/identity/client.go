// Package identity talks to the external identity provider. The portal
// never stores credentials itself; it exchanges them for a user id and
// binds the rest of the session from its own records.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Error codes surfaced to the user. Session state is never changed on
// a failed call.
const (
	CodeInvalidCredential = "invalid_credential"
	CodeUserNotFound      = "user_not_found"
	CodeEmailInUse        = "email_in_use"
	CodeNetwork           = "network"
)

// AuthError is a failed identity operation with a user-presentable code.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "identity: " + e.Code
	}
	return fmt.Sprintf("identity: %s: %s", e.Code, e.Message)
}

// CodeOf extracts the auth error code, or CodeNetwork for transport
// failures.
func CodeOf(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeNetwork
}

// Profile is the stored profile document for a signed-up user.
type Profile struct {
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	StudentIDs  []string `json:"student_ids"`
}

// Client calls the identity provider over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. With skip set every call returns canned data,
// which keeps dev and test environments off the network.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SignIn exchanges credentials for a user id.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	if c.Skip {
		if password == "" {
			return "", &AuthError{Code: CodeInvalidCredential}
		}
		return "mock-" + email, nil
	}

	var out struct {
		UserID string `json:"user_id"`
	}
	if err := c.post(ctx, "/v1/signin", map[string]string{"email": email, "password": password}, &out); err != nil {
		return "", err
	}
	return out.UserID, nil
}

// CreateAccount registers a new user and returns its id.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (string, error) {
	if c.Skip {
		return "mock-" + email, nil
	}

	var out struct {
		UserID string `json:"user_id"`
	}
	if err := c.post(ctx, "/v1/accounts", map[string]string{"email": email, "password": password}, &out); err != nil {
		return "", err
	}
	return out.UserID, nil
}

// GetProfile fetches a user's profile document; nil when unknown.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if c.Skip {
		return &Profile{UserID: userID, DisplayName: "Mock User", StudentIDs: []string{"1"}}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/profiles/"+userID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &AuthError{Code: CodeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("identity: decode profile: %w", err)
	}
	return &profile, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &AuthError{Code: CodeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity: decode response: %w", err)
	}
	return nil
}

// decodeError maps the provider's error payload onto an AuthError.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Code != "" {
		return &AuthError{Code: payload.Code, Message: payload.Message}
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Code: CodeInvalidCredential}
	case http.StatusNotFound:
		return &AuthError{Code: CodeUserNotFound}
	case http.StatusConflict:
		return &AuthError{Code: CodeEmailInUse}
	}
	return &AuthError{Code: CodeNetwork, Message: fmt.Sprintf("%s: %s", resp.Status, string(raw))}
}
