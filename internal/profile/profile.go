// Package profile manages the application-level user record that exists
// alongside the auth provider's account: display name, account type, avatar.
package profile

import (
	"context"
	"strings"
	"time"
)

// DefaultUserType is assigned to lazily created profiles.
const DefaultUserType = "adopter"

// DefaultFullName is the last resort when neither the provider metadata nor
// the email yields a display name.
const DefaultFullName = "Usuario"

// Profile describes a user beyond what the auth provider stores.
type Profile struct {
	UserID    string    `db:"user_id" json:"user_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	UserType  string    `db:"user_type" json:"user_type"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Store defines profile persistence. GetByUserID returns (nil, nil) when no
// profile exists, so callers can distinguish absence from failure.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
}

// Default builds the profile created lazily for users that authenticated
// before the app wrote one, using best-effort values from the provider's
// user metadata.
//
// The display name falls through: metadata full_name, metadata name, the
// local part of the email, then DefaultFullName. The avatar falls through
// the two metadata keys social providers populate.
func Default(userID, email string, metadata map[string]any) *Profile {
	name := metaString(metadata, "full_name")
	if name == "" {
		name = metaString(metadata, "name")
	}
	if name == "" {
		name = emailLocalPart(email)
	}
	if name == "" {
		name = DefaultFullName
	}

	avatar := metaString(metadata, "avatar_url")
	if avatar == "" {
		avatar = metaString(metadata, "picture")
	}

	return &Profile{
		UserID:    userID,
		FullName:  name,
		UserType:  DefaultUserType,
		AvatarURL: avatar,
	}
}

func metaString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	s, _ := metadata[key].(string)
	return strings.TrimSpace(s)
}

func emailLocalPart(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return strings.TrimSpace(local)
}
