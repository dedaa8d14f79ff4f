package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type sqlStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a Postgres-backed profile store over the profiles table.
func NewSQLStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) GetByUserID(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	query := `SELECT user_id, full_name, user_type, avatar_url, created_at, updated_at FROM profiles WHERE user_id = $1`
	err := s.db.GetContext(ctx, &p, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *sqlStore) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (user_id, full_name, user_type, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	return s.db.QueryRowxContext(ctx, query,
		p.UserID,
		p.FullName,
		p.UserType,
		p.AvatarURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}
