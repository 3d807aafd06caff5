package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pregnancy-planner-api/internal/model"
	"pregnancy-planner-api/internal/store"
)

const statusOneOf = "oneof=scheduled completed canceled"

var (
	errAppointmentNotFound = status.Error(codes.NotFound, "Appointment not found")
	errForbidden           = status.Error(codes.PermissionDenied, "Forbidden")
)

// AppointmentInput is the full mutable field set; Update replaces all of it.
// An empty Status means "not supplied".
type AppointmentInput struct {
	Title           string    `json:"title" validate:"required"`
	DateTime        time.Time `json:"date_time" validate:"required"`
	DoctorName      *string   `json:"doctor_name"`
	AppointmentType *string   `json:"appointment_type"`
	Status          string    `json:"status" validate:"omitempty,oneof=scheduled completed canceled"`
	Location        *string   `json:"location"`
	Notes           *string   `json:"notes"`
}

func (in *AppointmentInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Status = strings.TrimSpace(in.Status)
}

type Appointments struct {
	store AppointmentStore
}

func NewAppointments(st AppointmentStore) *Appointments {
	return &Appointments{store: st}
}

func (s *Appointments) Create(ctx context.Context, userID string, in AppointmentInput) (*model.Appointment, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, invalid(err)
	}
	if in.Status == "" {
		in.Status = model.StatusScheduled
	}

	a := &model.Appointment{
		ID:              uuid.New().String(),
		UserID:          userID,
		Title:           in.Title,
		DateTime:        in.DateTime,
		DoctorName:      in.DoctorName,
		AppointmentType: in.AppointmentType,
		Status:          in.Status,
		Location:        in.Location,
		Notes:           in.Notes,
	}
	created, err := s.store.CreateAppointment(ctx, a)
	if err != nil {
		return nil, internalErr(err)
	}
	return created, nil
}

func (s *Appointments) List(ctx context.Context, userID string) ([]model.Appointment, error) {
	apts, err := s.store.ListAppointments(ctx, userID)
	if err != nil {
		return nil, internalErr(err)
	}
	return apts, nil
}

func (s *Appointments) Get(ctx context.Context, userID, id string) (*model.Appointment, error) {
	return s.owned(ctx, userID, id)
}

func (s *Appointments) Update(ctx context.Context, userID, id string, in AppointmentInput) (*model.Appointment, error) {
	in.normalize()
	if err := validate.StructExcept(in, "Status"); err != nil {
		return nil, invalid(err)
	}

	cur, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = cur.Status
	}
	if err := validate.Var(in.Status, statusOneOf); err != nil {
		return nil, status.Error(codes.InvalidArgument, "status must be one of [scheduled completed canceled]")
	}

	next := *cur
	next.Title = in.Title
	next.DateTime = in.DateTime
	next.DoctorName = in.DoctorName
	next.AppointmentType = in.AppointmentType
	next.Status = in.Status
	next.Location = in.Location
	next.Notes = in.Notes

	updated, err := s.store.UpdateAppointment(ctx, &next)
	if errors.Is(err, store.ErrNotFound) {
		// deleted between lookup and update
		return nil, errAppointmentNotFound
	}
	if err != nil {
		return nil, internalErr(err)
	}
	return updated, nil
}

// Delete removes the appointment and returns what it held.
func (s *Appointments) Delete(ctx context.Context, userID, id string) (*model.Appointment, error) {
	cur, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteAppointment(ctx, cur.ID); errors.Is(err, store.ErrNotFound) {
		return nil, errAppointmentNotFound
	} else if err != nil {
		return nil, internalErr(err)
	}
	return cur, nil
}

// owned loads by id first and checks the owner second, so a missing id is
// NotFound for everyone and another user's id is PermissionDenied.
func (s *Appointments) owned(ctx context.Context, userID, id string) (*model.Appointment, error) {
	// uuid.Parse also takes urn:uuid:, braced and upper-case forms; the
	// store only ever sees the canonical one
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errAppointmentNotFound
	}
	a, err := s.store.GetAppointment(ctx, parsed.String())
	if errors.Is(err, store.ErrNotFound) {
		return nil, errAppointmentNotFound
	}
	if err != nil {
		return nil, internalErr(err)
	}
	if a.UserID != userID {
		return nil, errForbidden
	}
	return a, nil
}
