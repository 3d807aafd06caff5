package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pregnancy-planner-api/internal/model"
	"pregnancy-planner-api/internal/store"
)

func setup(t *testing.T) *store.Store {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := store.NewPool(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, store.Migrate(ctx, pool))
	return store.New(pool)
}

func newUser(t *testing.T, st *store.Store) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.New().String(),
		Username:     fmt.Sprintf("test-%s", uuid.New().String()[:8]),
		PasswordHash: "x",
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func TestUsers(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	u := newUser(t, st)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := st.UserByUsername(ctx, u.Username)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	dup := &model.User{ID: uuid.New().String(), Username: u.Username, PasswordHash: "y"}
	assert.ErrorIs(t, st.CreateUser(ctx, dup), store.ErrConflict)

	_, err = st.UserByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppointments(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	u := newUser(t, st)
	doctor := "Dr. Smith"
	when := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

	late, err := st.CreateAppointment(ctx, &model.Appointment{
		ID: uuid.New().String(), UserID: u.ID, Title: "Later",
		DateTime: when.Add(24 * time.Hour), Status: model.StatusScheduled,
	})
	require.NoError(t, err)
	early, err := st.CreateAppointment(ctx, &model.Appointment{
		ID: uuid.New().String(), UserID: u.ID, Title: "Ultrasound",
		DateTime: when, DoctorName: &doctor, Status: model.StatusScheduled,
	})
	require.NoError(t, err)
	assert.False(t, early.CreatedAt.IsZero())
	assert.True(t, when.Equal(early.DateTime))

	list, err := st.ListAppointments(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)

	early.Status = model.StatusCompleted
	early.DoctorName = nil
	updated, err := st.UpdateAppointment(ctx, early)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Nil(t, updated.DoctorName)

	require.NoError(t, st.DeleteAppointment(ctx, early.ID))
	_, err = st.GetAppointment(ctx, early.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.DeleteAppointment(ctx, early.ID), store.ErrNotFound)

	empty, err := st.ListAppointments(ctx, newUser(t, st).ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestProfiles(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	u := newUser(t, st)

	_, err := st.ProfileByUser(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	due := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	p, err := st.CreateProfile(ctx, &model.PregnancyProfile{ID: uuid.New().String(), UserID: u.ID, DueDate: due})
	require.NoError(t, err)
	assert.Equal(t, "2024-12-01", model.FormatDate(p.DueDate))

	_, err = st.CreateProfile(ctx, &model.PregnancyProfile{ID: uuid.New().String(), UserID: u.ID, DueDate: due})
	assert.ErrorIs(t, err, store.ErrConflict)

	nick := "Peanut"
	p.BabyNickname = &nick
	p.DueDate = due.AddDate(0, 0, 7)
	p, err = st.UpdateProfile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-08", model.FormatDate(p.DueDate))
	require.NotNil(t, p.BabyNickname)
	assert.Equal(t, nick, *p.BabyNickname)
}

func TestRefreshTokenRotation(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	u := newUser(t, st)
	exp := time.Now().Add(time.Hour)

	id, err := st.CreateRefreshToken(ctx, u.ID, "hash-"+uuid.New().String(), exp)
	require.NoError(t, err)

	newHash := "hash-" + uuid.New().String()
	require.NoError(t, st.RotateRefreshToken(ctx, id, uuid.New().String(), u.ID, newHash, exp))

	rt, err := st.GetRefreshTokenByHash(ctx, newHash)
	require.NoError(t, err)
	assert.False(t, rt.Revoked)

	// the old token was consumed
	err = st.RotateRefreshToken(ctx, id, uuid.New().String(), u.ID, "hash-"+uuid.New().String(), exp)
	assert.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, st.RevokeAllRefreshTokens(ctx, u.ID))
	rt, err = st.GetRefreshTokenByHash(ctx, newHash)
	require.NoError(t, err)
	assert.True(t, rt.Revoked)
}
