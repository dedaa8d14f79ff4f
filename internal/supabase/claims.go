package supabase

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// withUser fills in Session.User from the access token claims when the
// provider response omits the user object (the refresh grant sometimes
// does). The token was just issued by the provider over TLS, so the
// signature is not re-verified here.
func withUser(sess *Session) (*Session, error) {
	if sess.User != nil || sess.AccessToken == "" {
		return sess, nil
	}
	user, err := userFromToken(sess.AccessToken)
	if err != nil {
		return nil, err
	}
	sess.User = user
	return sess, nil
}

func userFromToken(accessToken string) (*User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, err
	}
	if sub == "" {
		return nil, errors.New("access token has no subject")
	}

	user := &User{ID: sub}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if md, ok := claims["user_metadata"].(map[string]any); ok {
		user.UserMetadata = md
	}
	return user, nil
}
