package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pregnancy-planner-api/internal/model"
)

// CreateUser fills in CreatedAt. A taken username yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return s.withConn(ctx, func(c *pgxpool.Conn) error {
		err := c.QueryRow(ctx,
			`INSERT INTO users (id, username, password_hash) VALUES ($1,$2,$3)
			 RETURNING created_at`,
			u.ID, u.Username, u.PasswordHash,
		).Scan(&u.CreatedAt)
		return translate(err)
	})
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	u := &model.User{}
	err := s.withConn(ctx, func(c *pgxpool.Conn) error {
		err := c.QueryRow(ctx,
			`SELECT id, username, password_hash, created_at
			 FROM users WHERE username = $1`, username,
		).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
		return translate(err)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := s.withConn(ctx, func(c *pgxpool.Conn) error {
		err := c.QueryRow(ctx,
			`SELECT id, username, password_hash, created_at
			 FROM users WHERE id = $1`, id,
		).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
		return translate(err)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
