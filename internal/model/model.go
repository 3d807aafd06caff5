package model

import "time"

// appointment statuses
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Appointment struct {
	ID              string
	UserID          string
	Title           string
	DateTime        time.Time
	DoctorName      *string
	AppointmentType *string
	Status          string
	Location        *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PregnancyProfile is unique per user.
type PregnancyProfile struct {
	ID           string
	UserID       string
	DueDate      time.Time
	BabyNickname *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string
	CreatedAt  time.Time
}
