// Package service implements the account, appointment and pregnancy profile
// managers. Every failure leaves this package as a gRPC status error so the
// transport can map it without inspecting storage details.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pregnancy-planner-api/internal/model"
)

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) (*model.Appointment, error)
	ListAppointments(ctx context.Context, userID string) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, a *model.Appointment) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

type ProfileStore interface {
	ProfileByUser(ctx context.Context, userID string) (*model.PregnancyProfile, error)
	CreateProfile(ctx context.Context, p *model.PregnancyProfile) (*model.PregnancyProfile, error)
	UpdateProfile(ctx context.Context, p *model.PregnancyProfile) (*model.PregnancyProfile, error)
}

type AccountStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so messages match the request payload
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// invalid turns a validator failure into an InvalidArgument status.
func invalid(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	fe := ve[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fe.Field() + " is required"
	case "oneof":
		msg = fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		msg = fe.Field() + " is invalid"
	}
	return status.Error(codes.InvalidArgument, msg)
}

// internalErr passes the underlying message through to the client.
func internalErr(err error) error {
	return status.Error(codes.Internal, err.Error())
}
