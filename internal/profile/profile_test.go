package profile

import "testing"

func TestDefaultFullNameFallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		metadata map[string]any
		want     string
	}{
		{
			name:     "metadata full_name wins",
			email:    "ana@example.com",
			metadata: map[string]any{"full_name": "Ana García", "name": "Ana"},
			want:     "Ana García",
		},
		{
			name:     "falls back to metadata name",
			email:    "ana@example.com",
			metadata: map[string]any{"name": "Ana"},
			want:     "Ana",
		},
		{
			name:     "falls back to email local part",
			email:    "ana.garcia@example.com",
			metadata: map[string]any{},
			want:     "ana.garcia",
		},
		{
			name:  "falls back to default name",
			email: "",
			want:  "Usuario",
		},
		{
			name:     "blank metadata values are skipped",
			email:    "leo@example.com",
			metadata: map[string]any{"full_name": "  ", "name": ""},
			want:     "leo",
		},
		{
			name:     "non-string metadata values are skipped",
			email:    "leo@example.com",
			metadata: map[string]any{"full_name": 42},
			want:     "leo",
		},
		{
			name:  "malformed email falls through",
			email: "not-an-email",
			want:  "Usuario",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default("user-1", tt.email, tt.metadata)
			if p.FullName != tt.want {
				t.Fatalf("expected full name %q, got %q", tt.want, p.FullName)
			}
		})
	}
}

func TestDefaultAvatarFallback(t *testing.T) {
	p := Default("user-1", "a@b.com", map[string]any{"picture": "https://cdn.example.com/p.png"})
	if p.AvatarURL != "https://cdn.example.com/p.png" {
		t.Fatalf("expected picture fallback, got %q", p.AvatarURL)
	}

	p = Default("user-1", "a@b.com", map[string]any{
		"avatar_url": "https://cdn.example.com/a.png",
		"picture":    "https://cdn.example.com/p.png",
	})
	if p.AvatarURL != "https://cdn.example.com/a.png" {
		t.Fatalf("avatar_url should win over picture, got %q", p.AvatarURL)
	}
}

func TestDefaultUserType(t *testing.T) {
	p := Default("user-1", "a@b.com", nil)
	if p.UserType != "adopter" {
		t.Fatalf("expected adopter, got %q", p.UserType)
	}
	if p.UserID != "user-1" {
		t.Fatalf("expected user id to carry over, got %q", p.UserID)
	}
}
