package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pregnancy-planner-api/internal/model"
)

const profileCols = `id, user_id, due_date, baby_nickname, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.PregnancyProfile, error) {
	p := &model.PregnancyProfile{}
	err := row.Scan(&p.ID, &p.UserID, &p.DueDate, &p.BabyNickname, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *Store) ProfileByUser(ctx context.Context, userID string) (*model.PregnancyProfile, error) {
	var out *model.PregnancyProfile
	err := s.withConn(ctx, func(c *pgxpool.Conn) error {
		var err error
		out, err = scanProfile(c.QueryRow(ctx,
			`SELECT `+profileCols+` FROM pregnancy_profiles WHERE user_id = $1`, userID))
		return err
	})
	return out, err
}

// CreateProfile returns ErrConflict when the user already has one.
func (s *Store) CreateProfile(ctx context.Context, p *model.PregnancyProfile) (*model.PregnancyProfile, error) {
	var out *model.PregnancyProfile
	err := s.withConn(ctx, func(c *pgxpool.Conn) error {
		var err error
		out, err = scanProfile(c.QueryRow(ctx,
			`INSERT INTO pregnancy_profiles (id, user_id, due_date, baby_nickname)
			 VALUES ($1,$2,$3,$4)
			 RETURNING `+profileCols,
			p.ID, p.UserID, p.DueDate, p.BabyNickname,
		))
		return err
	})
	return out, err
}

func (s *Store) UpdateProfile(ctx context.Context, p *model.PregnancyProfile) (*model.PregnancyProfile, error) {
	var out *model.PregnancyProfile
	err := s.withConn(ctx, func(c *pgxpool.Conn) error {
		var err error
		out, err = scanProfile(c.QueryRow(ctx,
			`UPDATE pregnancy_profiles
			 SET due_date=$1, baby_nickname=$2, updated_at=NOW()
			 WHERE user_id=$3
			 RETURNING `+profileCols,
			p.DueDate, p.BabyNickname, p.UserID,
		))
		return err
	})
	return out, err
}
