package db

import (
	"context"
	"errors"

	"github.com/Makiato1999/CareMate-Backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the slice of pgxpool.Pool the user store needs; pgxmock
// satisfies it in tests.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type UserStore struct {
	db Database
}

func NewUserStore(db Database) *UserStore {
	return &UserStore{db: db}
}

// EnsureSchema creates the users table and the partial unique index on openid
// that concurrent first logins rely on.
func (s *UserStore) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			openid TEXT NOT NULL,
			unionid TEXT,
			user_type TEXT NOT NULL DEFAULT 'ELDER',
			nickname TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			phone TEXT,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_openid_idx ON users(openid) WHERE NOT deleted`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// GetByOpenid returns the non-deleted user bound to the given openid, or
// pgx.ErrNoRows when none exists.
func (s *UserStore) GetByOpenid(ctx context.Context, openid string) (*model.User, error) {
	query := `
		SELECT id, openid, unionid, user_type, nickname, avatar_url, phone, deleted, created_at, updated_at
		FROM users
		WHERE openid = $1 AND NOT deleted
	`
	var user model.User
	err := s.db.QueryRow(ctx, query, openid).Scan(
		&user.ID,
		&user.Openid,
		&user.Unionid,
		&user.UserType,
		&user.Nickname,
		&user.AvatarURL,
		&user.Phone,
		&user.Deleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, openid string, unionid *string, userType model.UserType) (*model.User, error) {
	query := `
		INSERT INTO users (openid, unionid, user_type, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, openid, unionid, user_type, nickname, avatar_url, phone, deleted, created_at, updated_at
	`
	var user model.User
	err := s.db.QueryRow(ctx, query, openid, unionid, userType).Scan(
		&user.ID,
		&user.Openid,
		&user.Unionid,
		&user.UserType,
		&user.Nickname,
		&user.AvatarURL,
		&user.Phone,
		&user.Deleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
