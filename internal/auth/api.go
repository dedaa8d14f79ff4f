// Package auth holds the HTTP handlers that complete authentication flows
// started by the PetAdopt mobile app: the OAuth callback, email confirmation,
// and password reset. Each handler is a stateless request/response transform
// over the Supabase client.
package auth

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/petadopt/authgw/internal/config"
	"github.com/petadopt/authgw/internal/profile"
	"github.com/petadopt/authgw/internal/supabase"
)

// errorPagePath is the shared static error page; every failed GET flow
// redirects there with a human-readable message.
const errorPagePath = "/error.html"

// HTTPHandler implements the auth completion endpoints.
type HTTPHandler struct {
	provider supabase.Client
	profiles profile.Store
	cfg      config.Config
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(provider supabase.Client, profiles profile.Store, cfg config.Config, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		provider: provider,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the auth completion routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/auth/callback", h.callback)
	router.GET("/auth/confirm-email", h.confirmEmail)
	router.GET("/auth/reset-password", h.resetPasswordForm)
	router.POST("/auth/reset-password", h.updatePassword)
}

// callback completes the OAuth flow: exchange the code for a session, make
// sure a profile exists, then hand the tokens to the app.
func (h *HTTPHandler) callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		desc := c.Query("error_description")
		if desc == "" {
			desc = errParam
		}
		h.logger.Warn("oauth provider returned an error",
			zap.String("error", errParam),
			zap.String("description", desc),
		)
		h.redirectError(c, desc)
		return
	}

	code := c.Query("code")
	if code == "" {
		h.redirectError(c, msgInvalidCode)
		return
	}

	sess, err := h.provider.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("code exchange failed", zap.Error(err))
		h.redirectError(c, providerMessage(err))
		return
	}
	if sess == nil || sess.AccessToken == "" || sess.User == nil {
		h.redirectError(c, msgSessionFailed)
		return
	}

	if err := h.ensureProfile(c.Request.Context(), sess.User); err != nil {
		h.logger.Error("profile bootstrap failed",
			zap.String("user_id", sess.User.ID),
			zap.Error(err),
		)
		h.redirectError(c, msgProfileFailed)
		return
	}

	h.renderHTML(c, callbackPageTmpl, callbackPageData{
		AppURL:        h.appURLWithTokens(sess.AccessToken, sess.RefreshToken),
		RedirectDelay: callbackRedirectDelayMS,
		FallbackDelay: fallbackRevealDelayMS,
	})
}

// confirmEmail verifies a signup (or recovery) one-time token.
func (h *HTTPHandler) confirmEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.redirectError(c, msgInvalidToken)
		return
	}

	otpType := supabase.OTPTypeSignup
	if c.Query("type") == supabase.OTPTypeRecovery {
		otpType = supabase.OTPTypeRecovery
	}

	sess, err := h.provider.VerifyOTP(c.Request.Context(), token, otpType)
	if err != nil {
		h.logger.Error("email token verification failed", zap.Error(err))
		h.redirectError(c, providerMessage(err))
		return
	}
	if sess == nil || sess.User == nil {
		h.redirectError(c, msgEmailUnverified)
		return
	}

	h.renderHTML(c, confirmPageTmpl, confirmPageData{
		AppURL:        template.URL(h.cfg.SuccessRedirectURL),
		RedirectDelay: confirmRedirectDelayMS,
		FallbackDelay: fallbackRevealDelayMS,
	})
}

// resetPasswordForm serves the new-password form. The recovery token (or
// the token pair from links in older reset emails) is embedded into the
// form's submission so the POST branch receives the same credentials.
func (h *HTTPHandler) resetPasswordForm(c *gin.Context) {
	token := c.Query("token")
	accessToken := c.Query("access_token")
	refreshToken := c.Query("refresh_token")
	if token == "" && accessToken == "" {
		h.redirectError(c, msgInvalidToken)
		return
	}

	h.renderHTML(c, resetPageTmpl, resetPageData{
		AppURL:        template.URL(h.cfg.SuccessRedirectURL),
		Token:         token,
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		RedirectDelay: resetRedirectDelayMS,
	})
}

// updatePassword proves possession of the reset token against the provider,
// then updates the password under the proven identity.
func (h *HTTPHandler) updatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgServerError, "details": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgPasswordTooShort})
		return
	}

	ctx := c.Request.Context()
	var (
		sess *supabase.Session
		err  error
	)
	switch {
	case req.Token != "":
		sess, err = h.provider.VerifyOTP(ctx, req.Token, supabase.OTPTypeRecovery)
	case req.RefreshToken != "":
		// Links from reset emails sent before the recovery-token flow
		// carry an access/refresh token pair instead.
		sess, err = h.provider.RefreshSession(ctx, req.RefreshToken)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidToken})
		return
	}
	if err != nil {
		h.logger.Error("reset token verification failed", zap.Error(err))
		h.jsonError(c, err)
		return
	}
	if sess == nil || sess.AccessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgSessionFailed})
		return
	}

	if err := h.provider.UpdateUserPassword(ctx, sess.AccessToken, req.Password); err != nil {
		h.logger.Error("password update failed", zap.Error(err))
		h.jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgPasswordUpdated})
}

// ensureProfile lazily creates the application profile for users that
// authenticated before the app wrote one.
func (h *HTTPHandler) ensureProfile(ctx context.Context, user *supabase.User) error {
	existing, err := h.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return h.profiles.Create(ctx, profile.Default(user.ID, user.Email, user.UserMetadata))
}

// redirectError sends the user agent to the shared error page with the
// message URL-encoded.
func (h *HTTPHandler) redirectError(c *gin.Context, message string) {
	c.Redirect(http.StatusFound, errorPagePath+"?message="+url.QueryEscape(message))
}

// jsonError converts a provider failure into the JSON error contract of the
// POST flow: provider errors answer 400 with the provider's message,
// anything else answers 500.
func (h *HTTPHandler) jsonError(c *gin.Context, err error) {
	var provErr *supabase.Error
	if errors.As(err, &provErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": provErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError, "details": err.Error()})
}

func (h *HTTPHandler) appURLWithTokens(accessToken, refreshToken string) template.URL {
	query := url.Values{}
	query.Set("access_token", accessToken)
	query.Set("refresh_token", refreshToken)
	return template.URL(h.cfg.SuccessRedirectURL + "?" + query.Encode())
}

func (h *HTTPHandler) renderHTML(c *gin.Context, tmpl *template.Template, data any) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := tmpl.Execute(c.Writer, data); err != nil {
		h.logger.Error("failed to render page", zap.String("template", tmpl.Name()), zap.Error(err))
	}
}

// providerMessage extracts the user-visible message from a provider failure;
// transport-level errors collapse to a generic message.
func providerMessage(err error) string {
	var provErr *supabase.Error
	if errors.As(err, &provErr) {
		return provErr.Message
	}
	return msgServerError
}
