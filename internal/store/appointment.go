package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pregnancy-planner-api/internal/model"
)

const appointmentCols = `id, user_id, title, date_time, doctor_name, appointment_type,
	status, location, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.DateTime, &a.DoctorName, &a.AppointmentType,
		&a.Status, &a.Location, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	var out *model.Appointment
	err := s.withConn(ctx, func(c *pgxpool.Conn) error {
		var err error
		out, err = scanAppointment(c.QueryRow(ctx,
			`INSERT INTO appointments (id, user_id, title, date_time, doctor_name, appointment_type, status, location, notes)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			 RETURNING `+appointmentCols,
			a.ID, a.UserID, a.Title, a.DateTime, a.DoctorName, a.AppointmentType, a.Status, a.Location, a.Notes,
		))
		return err
	})
	return out, err
}

// ListAppointments returns the user's appointments, earliest first.
func (s *Store) ListAppointments(ctx context.Context, userID string) ([]model.Appointment, error) {
	out := []model.Appointment{}
	err := s.withConn(ctx, func(c *pgxpool.Conn) error {
		rows, err := c.Query(ctx,
			`SELECT `+appointmentCols+`
			 FROM appointments
			 WHERE user_id = $1
			 ORDER BY date_time ASC, created_at ASC`, userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanAppointment(rows)
			if err != nil {
				return err
			}
			out = append(out, *a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAppointment looks up by id only; ownership is the caller's concern.
func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	var out *model.Appointment
	err := s.withConn(ctx, func(c *pgxpool.Conn) error {
		var err error
		out, err = scanAppointment(c.QueryRow(ctx,
			`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
		return err
	})
	return out, err
}

func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	var out *model.Appointment
	err := s.withConn(ctx, func(c *pgxpool.Conn) error {
		var err error
		out, err = scanAppointment(c.QueryRow(ctx,
			`UPDATE appointments
			 SET title=$1, date_time=$2, doctor_name=$3, appointment_type=$4,
			     location=$5, notes=$6, status=$7, updated_at=NOW()
			 WHERE id=$8
			 RETURNING `+appointmentCols,
			a.Title, a.DateTime, a.DoctorName, a.AppointmentType, a.Location, a.Notes, a.Status, a.ID,
		))
		return err
	})
	return out, err
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	return s.withConn(ctx, func(c *pgxpool.Conn) error {
		tag, err := c.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
