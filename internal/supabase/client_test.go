package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "anon-key", 5*time.Second, zap.NewNop())
}

func signedAccessToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestExchangeCodeRequest(t *testing.T) {
	var gotPath, gotGrant, gotAPIKey string
	var gotBody map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotGrant = r.URL.Query().Get("grant_type")
		gotAPIKey = r.Header.Get("apikey")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(Session{
			AccessToken:  "tok-access",
			RefreshToken: "tok-refresh",
			User:         &User{ID: "user-1", Email: "ana@example.com"},
		})
	})

	sess, err := client.ExchangeCode(context.Background(), "code-123")
	if err != nil {
		t.Fatalf("exchange error: %v", err)
	}
	if gotPath != "/auth/v1/token" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotGrant != "pkce" {
		t.Fatalf("unexpected grant type %q", gotGrant)
	}
	if gotAPIKey != "anon-key" {
		t.Fatalf("apikey header missing, got %q", gotAPIKey)
	}
	if gotBody["auth_code"] != "code-123" {
		t.Fatalf("unexpected body %v", gotBody)
	}
	if sess.AccessToken != "tok-access" || sess.User == nil || sess.User.ID != "user-1" {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestVerifyOTPRequest(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(Session{
			AccessToken: "tok-access",
			User:        &User{ID: "user-1"},
		})
	})

	if _, err := client.VerifyOTP(context.Background(), "hash-1", OTPTypeRecovery); err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if gotPath != "/auth/v1/verify" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["token_hash"] != "hash-1" || gotBody["type"] != "recovery" {
		t.Fatalf("unexpected body %v", gotBody)
	}
}

func TestUpdateUserPasswordRequest(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	if err := client.UpdateUserPassword(context.Background(), "session-token", "newpassword"); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/auth/v1/user" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer session-token" {
		t.Fatalf("password update must run under the session token, got %q", gotAuth)
	}
	if gotBody["password"] != "newpassword" {
		t.Fatalf("unexpected body %v", gotBody)
	}
}

func TestRefreshSessionFillsUserFromClaims(t *testing.T) {
	access := signedAccessToken(t, jwt.MapClaims{
		"sub":   "user-9",
		"email": "leo@example.com",
		"user_metadata": map[string]any{
			"full_name": "Leo Pérez",
		},
	})

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "refresh_token" {
			t.Errorf("unexpected grant type %q", r.URL.Query().Get("grant_type"))
		}
		// No user object in the response; the client must recover it
		// from the access token claims.
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  access,
			"refresh_token": "rt-2",
		})
	})

	sess, err := client.RefreshSession(context.Background(), "rt-1")
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if sess.User == nil || sess.User.ID != "user-9" {
		t.Fatalf("expected user recovered from claims, got %+v", sess.User)
	}
	if sess.User.Email != "leo@example.com" {
		t.Fatalf("expected email from claims, got %q", sess.User.Email)
	}
	if got := sess.User.UserMetadata["full_name"]; got != "Leo Pérez" {
		t.Fatalf("expected metadata from claims, got %v", got)
	}
}

func TestProviderErrorParsing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Token has expired or is invalid"})
	})

	_, err := client.VerifyOTP(context.Background(), "hash-1", OTPTypeSignup)
	if err == nil {
		t.Fatalf("expected error")
	}
	var provErr *Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if provErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", provErr.StatusCode)
	}
	if provErr.Message != "Token has expired or is invalid" {
		t.Fatalf("unexpected message %q", provErr.Message)
	}
}

func TestProviderErrorFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ExchangeCode(context.Background(), "code-1")
	var provErr *Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if provErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("unexpected message %q", provErr.Message)
	}
}

func TestUserFromTokenRejectsMissingSubject(t *testing.T) {
	access := signedAccessToken(t, jwt.MapClaims{"email": "x@example.com"})
	if _, err := userFromToken(access); err == nil {
		t.Fatalf("expected error for token without subject")
	}
}
