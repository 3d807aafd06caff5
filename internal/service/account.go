package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pregnancy-planner-api/internal/auth"
	"pregnancy-planner-api/internal/model"
	"pregnancy-planner-api/internal/store"
)

var (
	errBadCredentials = status.Error(codes.Unauthenticated, "Invalid credentials")
	errBadRefresh     = status.Error(codes.Unauthenticated, "Invalid refresh token")
)

type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Session is what sign-up, sign-in and refresh hand back to the client.
type Session struct {
	User         *model.User
	Token        string
	RefreshToken string
}

type AccountOptions struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Accounts struct {
	store AccountStore
	opts  AccountOptions
	now   func() time.Time
}

func NewAccounts(st AccountStore, opts AccountOptions) *Accounts {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 30 * 24 * time.Hour
	}
	return &Accounts{store: st, opts: opts, now: time.Now}
}

func (s *Accounts) SignUp(ctx context.Context, in Credentials) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validate.Struct(in); err != nil {
		return nil, invalid(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, internalErr(err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, u); errors.Is(err, store.ErrConflict) {
		return nil, status.Error(codes.AlreadyExists, "Username already taken")
	} else if err != nil {
		return nil, internalErr(err)
	}

	return s.issue(ctx, u)
}

func (s *Accounts) SignIn(ctx context.Context, in Credentials) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password required")
	}

	u, err := s.store.UserByUsername(ctx, in.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, internalErr(err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, errBadCredentials
	}

	return s.issue(ctx, u)
}

// Refresh rotates a refresh token. Presenting an already-rotated token is
// treated as theft and revokes every token the user holds.
func (s *Accounts) Refresh(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh_token is required")
	}

	rt, err := s.store.GetRefreshTokenByHash(ctx, auth.HashRefreshToken(raw))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errBadRefresh
	}
	if err != nil {
		return nil, internalErr(err)
	}
	if rt.Revoked {
		if err := s.store.RevokeAllRefreshTokens(ctx, rt.UserID); err != nil {
			return nil, internalErr(err)
		}
		return nil, errBadRefresh
	}
	if !s.now().Before(rt.ExpiresAt) {
		return nil, errBadRefresh
	}

	u, err := s.store.UserByID(ctx, rt.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errBadRefresh
	}
	if err != nil {
		return nil, internalErr(err)
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, internalErr(err)
	}
	newID := uuid.New().String()
	err = s.store.RotateRefreshToken(ctx, rt.ID, newID, u.ID, newHash, s.now().Add(s.opts.RefreshTTL))
	if errors.Is(err, store.ErrConflict) {
		return nil, errBadRefresh
	}
	if err != nil {
		return nil, internalErr(err)
	}

	tok, err := auth.MakeToken(u.ID, s.opts.Secret, s.opts.AccessTTL)
	if err != nil {
		return nil, internalErr(err)
	}
	return &Session{User: u, Token: tok, RefreshToken: newRaw}, nil
}

func (s *Accounts) SignOut(ctx context.Context, userID string) error {
	if err := s.store.RevokeAllRefreshTokens(ctx, userID); err != nil {
		return internalErr(err)
	}
	return nil
}

func (s *Accounts) issue(ctx context.Context, u *model.User) (*Session, error) {
	tok, err := auth.MakeToken(u.ID, s.opts.Secret, s.opts.AccessTTL)
	if err != nil {
		return nil, internalErr(err)
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, internalErr(err)
	}
	if _, err := s.store.CreateRefreshToken(ctx, u.ID, hash, s.now().Add(s.opts.RefreshTTL)); err != nil {
		return nil, internalErr(err)
	}
	return &Session{User: u, Token: tok, RefreshToken: raw}, nil
}
