package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pregnancy-planner-api/internal/model"
	"pregnancy-planner-api/internal/store"
)

var (
	errProfileExists   = status.Error(codes.AlreadyExists, "Profile already exists")
	errProfileNotFound = status.Error(codes.NotFound, "Profile not found")
)

type ProfileInput struct {
	DueDate      time.Time `json:"due_date" validate:"required"`
	BabyNickname *string   `json:"baby_nickname"`
}

type Profiles struct {
	store ProfileStore
}

func NewProfiles(st ProfileStore) *Profiles {
	return &Profiles{store: st}
}

// Get returns (nil, nil) when the user has not created a profile yet.
func (s *Profiles) Get(ctx context.Context, userID string) (*model.PregnancyProfile, error) {
	p, err := s.store.ProfileByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalErr(err)
	}
	return p, nil
}

func (s *Profiles) Create(ctx context.Context, userID string, in ProfileInput) (*model.PregnancyProfile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, invalid(err)
	}

	_, err := s.store.ProfileByUser(ctx, userID)
	if err == nil {
		return nil, errProfileExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, internalErr(err)
	}

	created, err := s.store.CreateProfile(ctx, &model.PregnancyProfile{
		ID:           uuid.New().String(),
		UserID:       userID,
		DueDate:      in.DueDate,
		BabyNickname: in.BabyNickname,
	})
	// the unique key on user_id catches a concurrent create
	if errors.Is(err, store.ErrConflict) {
		return nil, errProfileExists
	}
	if err != nil {
		return nil, internalErr(err)
	}
	return created, nil
}

func (s *Profiles) Update(ctx context.Context, userID string, in ProfileInput) (*model.PregnancyProfile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, invalid(err)
	}

	cur, err := s.store.ProfileByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errProfileNotFound
	}
	if err != nil {
		return nil, internalErr(err)
	}
	next := *cur
	next.DueDate = in.DueDate
	next.BabyNickname = in.BabyNickname

	updated, err := s.store.UpdateProfile(ctx, &next)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errProfileNotFound
	}
	if err != nil {
		return nil, internalErr(err)
	}
	return updated, nil
}
