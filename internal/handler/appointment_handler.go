package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pregnancy-planner-api/internal/model"
	"pregnancy-planner-api/internal/render"
	"pregnancy-planner-api/internal/service"
)

type appointmentRequest struct {
	Title           string  `json:"title"`
	DateTime        string  `json:"date_time"`
	DoctorName      *string `json:"doctor_name"`
	AppointmentType *string `json:"appointment_type"`
	Status          string  `json:"status"`
	Location        *string `json:"location"`
	Notes           *string `json:"notes"`
}

func (req appointmentRequest) input() (service.AppointmentInput, error) {
	dt, err := model.ParseDateTime(req.DateTime)
	if err != nil {
		return service.AppointmentInput{}, status.Error(codes.InvalidArgument,
			"date_time must be formatted as YYYY-MM-DD HH:MM:SS")
	}
	// the zero time means "missing" to validation
	if dt.IsZero() && strings.TrimSpace(req.DateTime) != "" {
		return service.AppointmentInput{}, status.Error(codes.InvalidArgument, "date_time is out of range")
	}
	return service.AppointmentInput{
		Title:           req.Title,
		DateTime:        dt,
		DoctorName:      req.DoctorName,
		AppointmentType: req.AppointmentType,
		Status:          req.Status,
		Location:        req.Location,
		Notes:           req.Notes,
	}, nil
}

type appointmentJSON struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	DateTime        string    `json:"date_time"`
	DoctorName      *string   `json:"doctor_name"`
	AppointmentType *string   `json:"appointment_type"`
	Status          string    `json:"status"`
	Location        *string   `json:"location"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toAppointmentJSON(a *model.Appointment) appointmentJSON {
	return appointmentJSON{
		ID:              a.ID,
		UserID:          a.UserID,
		Title:           a.Title,
		DateTime:        model.FormatDateTime(a.DateTime),
		DoctorName:      a.DoctorName,
		AppointmentType: a.AppointmentType,
		Status:          a.Status,
		Location:        a.Location,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	a, err := h.appointments.Create(r.Context(), uid(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, toAppointmentJSON(a))
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	apts, err := h.appointments.List(r.Context(), uid(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]appointmentJSON, len(apts))
	for i := range apts {
		out[i] = toAppointmentJSON(&apts[i])
	}
	render.JSON(w, http.StatusOK, out)
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	a, err := h.appointments.Get(r.Context(), uid(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, toAppointmentJSON(a))
}

func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	a, err := h.appointments.Update(r.Context(), uid(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, toAppointmentJSON(a))
}

// DeleteAppointment answers with the record as it was before removal.
func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	a, err := h.appointments.Delete(r.Context(), uid(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, toAppointmentJSON(a))
}
