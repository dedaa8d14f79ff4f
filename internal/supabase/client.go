// Package supabase implements the narrow slice of the Supabase GoTrue REST
// API the gateway needs: code exchange, one-time token verification, password
// updates, and session restoration. There is no official Go SDK, so the
// client talks to the /auth/v1 endpoints directly.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Auth API endpoint paths.
const (
	authBasePath = "/auth/v1"
	tokenPath    = authBasePath + "/token"
	verifyPath   = authBasePath + "/verify"
	userPath     = authBasePath + "/user"
)

// Token grant types accepted by the token endpoint.
const (
	grantAuthorizationCode = "pkce"
	grantRefreshToken      = "refresh_token"
)

// One-time token purposes accepted by the verify endpoint.
const (
	OTPTypeSignup   = "signup"
	OTPTypeRecovery = "recovery"
)

// User is the provider's view of an authenticated user.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// Session is a provider-issued access/refresh token pair plus the user it
// identifies. It is consumed immediately to build a response, never stored.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

// Error is a failure reported by the auth provider.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.StatusCode)
}

// Client defines the provider operations the handlers depend on. Tests
// substitute a fake to drive every success and failure branch offline.
type Client interface {
	// ExchangeCode trades an OAuth authorization code for a session.
	ExchangeCode(ctx context.Context, code string) (*Session, error)
	// VerifyOTP verifies a one-time token for the given purpose and returns
	// the session it establishes.
	VerifyOTP(ctx context.Context, tokenHash, otpType string) (*Session, error)
	// UpdateUserPassword sets a new password for the user the access token
	// identifies.
	UpdateUserPassword(ctx context.Context, accessToken, password string) error
	// RefreshSession restores a session from a refresh token.
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
}

type restClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a REST client against the given Supabase project URL.
// Every request is bounded by the supplied timeout; nothing is retried,
// since none of these operations are idempotent on the provider side.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) Client {
	return &restClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *restClient) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	payload := map[string]string{"auth_code": code}
	var sess Session
	if err := c.do(ctx, http.MethodPost, tokenPath+"?grant_type="+grantAuthorizationCode, "", payload, &sess); err != nil {
		return nil, err
	}
	return withUser(&sess)
}

func (c *restClient) VerifyOTP(ctx context.Context, tokenHash, otpType string) (*Session, error) {
	payload := map[string]string{"token_hash": tokenHash, "type": otpType}
	var sess Session
	if err := c.do(ctx, http.MethodPost, verifyPath, "", payload, &sess); err != nil {
		return nil, err
	}
	return withUser(&sess)
}

func (c *restClient) UpdateUserPassword(ctx context.Context, accessToken, password string) error {
	payload := map[string]string{"password": password}
	return c.do(ctx, http.MethodPut, userPath, accessToken, payload, nil)
}

func (c *restClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	payload := map[string]string{"refresh_token": refreshToken}
	var sess Session
	if err := c.do(ctx, http.MethodPost, tokenPath+"?grant_type="+grantRefreshToken, "", payload, &sess); err != nil {
		return nil, err
	}
	return withUser(&sess)
}

func (c *restClient) do(ctx context.Context, method, path, bearer string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		provErr := parseError(resp)
		c.logger.Warn("provider call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", provErr.Message),
		)
		return provErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseError maps a GoTrue error body to an *Error. The API is inconsistent
// about the field name across endpoints, so several are tried.
func parseError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)

	msg := body.Msg
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = body.ErrorDescription
	}
	if msg == "" {
		msg = body.ErrorCode
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}
