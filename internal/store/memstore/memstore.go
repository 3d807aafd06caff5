// Package memstore is an in-memory implementation of the store used in tests
// and with STORAGE_BACKEND=memory. It is safe for concurrent use and mirrors
// the Postgres constraints: unique usernames, one profile per user, unique
// refresh token hashes.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pregnancy-planner-api/internal/model"
	"pregnancy-planner-api/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	users        map[string]model.User
	appointments map[string]model.Appointment
	profiles     map[string]model.PregnancyProfile // keyed by user id
	tokens       map[string]model.RefreshToken
	seq          map[string]uint64 // appointment insertion order
	next         uint64
}

func New() *Store {
	return &Store{
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[string]model.User),
		appointments: make(map[string]model.Appointment),
		profiles:     make(map[string]model.PregnancyProfile),
		tokens:       make(map[string]model.RefreshToken),
		seq:          make(map[string]uint64),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// users

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return store.ErrConflict
		}
	}
	u.CreatedAt = s.now()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

// refresh tokens

func (s *Store) CreateRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	if err := s.insertTokenLocked(id, userID, tokenHash, expiresAt); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) insertTokenLocked(id, userID, tokenHash string, expiresAt time.Time) error {
	for _, t := range s.tokens {
		if t.TokenHash == tokenHash {
			return store.ErrConflict
		}
	}
	s.tokens[id] = model.RefreshToken{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	return nil
}

func (s *Store) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tokens {
		if t.TokenHash == tokenHash {
			return cloneToken(t), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) RotateRefreshToken(_ context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.tokens[oldID]
	if !ok || old.Revoked {
		return store.ErrConflict
	}
	if err := s.insertTokenLocked(newID, userID, newHash, newExpiry); err != nil {
		return err
	}
	old.Revoked = true
	old.ReplacedBy = &newID
	s.tokens[oldID] = old
	return nil
}

func (s *Store) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			s.tokens[id] = t
		}
	}
	return nil
}

// appointments

func (s *Store) CreateAppointment(_ context.Context, a *model.Appointment) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[a.ID]; ok {
		return nil, store.ErrConflict
	}
	c := cloneAppointment(*a)
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.appointments[c.ID] = c
	s.next++
	s.seq[c.ID] = s.next
	out := cloneAppointment(c)
	return &out, nil
}

func (s *Store) ListAppointments(_ context.Context, userID string) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Appointment{}
	for _, a := range s.appointments {
		if a.UserID == userID {
			out = append(out, cloneAppointment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].DateTime.Before(out[j].DateTime)
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

func (s *Store) GetAppointment(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneAppointment(a)
	return &out, nil
}

func (s *Store) UpdateAppointment(_ context.Context, a *model.Appointment) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.appointments[a.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	next := cloneAppointment(*a)
	next.UserID = cur.UserID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = s.now()
	s.appointments[a.ID] = next
	out := cloneAppointment(next)
	return &out, nil
}

func (s *Store) DeleteAppointment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.appointments, id)
	delete(s.seq, id)
	return nil
}

// profiles

func (s *Store) ProfileByUser(_ context.Context, userID string) (*model.PregnancyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneProfile(p)
	return &out, nil
}

func (s *Store) CreateProfile(_ context.Context, p *model.PregnancyProfile) (*model.PregnancyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; ok {
		return nil, store.ErrConflict
	}
	c := cloneProfile(*p)
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.profiles[c.UserID] = c
	out := cloneProfile(c)
	return &out, nil
}

func (s *Store) UpdateProfile(_ context.Context, p *model.PregnancyProfile) (*model.PregnancyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.profiles[p.UserID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cur.DueDate = p.DueDate
	cur.BabyNickname = cloneString(p.BabyNickname)
	cur.UpdatedAt = s.now()
	s.profiles[p.UserID] = cur
	out := cloneProfile(cur)
	return &out, nil
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneAppointment(a model.Appointment) model.Appointment {
	a.DoctorName = cloneString(a.DoctorName)
	a.AppointmentType = cloneString(a.AppointmentType)
	a.Location = cloneString(a.Location)
	a.Notes = cloneString(a.Notes)
	return a
}

func cloneProfile(p model.PregnancyProfile) model.PregnancyProfile {
	p.BabyNickname = cloneString(p.BabyNickname)
	return p
}

func cloneToken(t model.RefreshToken) *model.RefreshToken {
	t.ReplacedBy = cloneString(t.ReplacedBy)
	return &t
}
