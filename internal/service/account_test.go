package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pregnancy-planner-api/internal/auth"
	"pregnancy-planner-api/internal/service"
	"pregnancy-planner-api/internal/store/memstore"
)

const testSecret = "test-secret"

func newAccounts(t *testing.T) (*service.Accounts, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	return service.NewAccounts(st, service.AccountOptions{Secret: testSecret}), st
}

func TestSignUpAndSignIn(t *testing.T) {
	s, _ := newAccounts(t)
	ctx := context.Background()

	sess, err := s.SignUp(ctx, service.Credentials{Username: "  maria ", Password: "testpass123"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.User.ID)
	assert.Equal(t, "maria", sess.User.Username)
	assert.NotEmpty(t, sess.RefreshToken)

	c, err := auth.ParseToken(sess.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, c.UserID)

	in, err := s.SignIn(ctx, service.Credentials{Username: "maria", Password: "testpass123"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, in.User.ID)
	assert.NotEqual(t, sess.RefreshToken, in.RefreshToken)
}

func TestSignUpValidation(t *testing.T) {
	s, _ := newAccounts(t)

	tests := []struct {
		name string
		in   service.Credentials
	}{
		{"empty username", service.Credentials{Password: "testpass123"}},
		{"short username", service.Credentials{Username: "ab", Password: "testpass123"}},
		{"empty password", service.Credentials{Username: "maria"}},
		{"short password", service.Credentials{Username: "maria", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SignUp(context.Background(), tt.in)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestSignUpDuplicate(t *testing.T) {
	s, _ := newAccounts(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, service.Credentials{Username: "maria", Password: "testpass123"})
	require.NoError(t, err)
	_, err = s.SignUp(ctx, service.Credentials{Username: "maria", Password: "otherpass123"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestSignInRejects(t *testing.T) {
	s, _ := newAccounts(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, service.Credentials{Username: "maria", Password: "testpass123"})
	require.NoError(t, err)

	_, err = s.SignIn(ctx, service.Credentials{Username: "maria", Password: "wrongpassword"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	wrongPw := status.Convert(err).Message()

	_, err = s.SignIn(ctx, service.Credentials{Username: "nobody", Password: "testpass123"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	// same message either way
	assert.Equal(t, wrongPw, status.Convert(err).Message())

	_, err = s.SignIn(ctx, service.Credentials{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRefreshRotation(t *testing.T) {
	s, _ := newAccounts(t)
	ctx := context.Background()

	sess, err := s.SignUp(ctx, service.Credentials{Username: "maria", Password: "testpass123"})
	require.NoError(t, err)

	next, err := s.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, next.User.ID)
	assert.NotEqual(t, sess.RefreshToken, next.RefreshToken)

	// replaying the rotated token revokes the whole family
	_, err = s.Refresh(ctx, sess.RefreshToken)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	_, err = s.Refresh(ctx, next.RefreshToken)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRefreshRejects(t *testing.T) {
	st := memstore.New()
	s := service.NewAccounts(st, service.AccountOptions{Secret: testSecret, RefreshTTL: time.Nanosecond})
	ctx := context.Background()

	_, err := s.Refresh(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Refresh(ctx, "deadbeef")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	sess, err := s.SignUp(ctx, service.Credentials{Username: "maria", Password: "testpass123"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = s.Refresh(ctx, sess.RefreshToken)
	assert.Equal(t, codes.Unauthenticated, status.Code(err), "expired token")
}

func TestSignOutRevokesRefreshTokens(t *testing.T) {
	s, _ := newAccounts(t)
	ctx := context.Background()

	sess, err := s.SignUp(ctx, service.Credentials{Username: "maria", Password: "testpass123"})
	require.NoError(t, err)

	require.NoError(t, s.SignOut(ctx, sess.User.ID))
	_, err = s.Refresh(ctx, sess.RefreshToken)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
