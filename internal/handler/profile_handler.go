package handler

import (
	"net/http"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pregnancy-planner-api/internal/model"
	"pregnancy-planner-api/internal/render"
	"pregnancy-planner-api/internal/service"
)

type profileRequest struct {
	DueDate      string  `json:"due_date"`
	BabyNickname *string `json:"baby_nickname"`
}

func (req profileRequest) input() (service.ProfileInput, error) {
	d, err := model.ParseDate(req.DueDate)
	if err != nil {
		return service.ProfileInput{}, status.Error(codes.InvalidArgument, "due_date must be formatted as YYYY-MM-DD")
	}
	if d.IsZero() && strings.TrimSpace(req.DueDate) != "" {
		return service.ProfileInput{}, status.Error(codes.InvalidArgument, "due_date is out of range")
	}
	return service.ProfileInput{DueDate: d, BabyNickname: req.BabyNickname}, nil
}

type profileJSON struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DueDate      string    `json:"due_date"`
	BabyNickname *string   `json:"baby_nickname"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toProfileJSON(p *model.PregnancyProfile) profileJSON {
	return profileJSON{
		ID:           p.ID,
		UserID:       p.UserID,
		DueDate:      model.FormatDate(p.DueDate),
		BabyNickname: p.BabyNickname,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// GetProfile answers 200 with null when no profile exists yet.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), uid(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if p == nil {
		render.JSON(w, http.StatusOK, nil)
		return
	}
	render.JSON(w, http.StatusOK, toProfileJSON(p))
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	in, ok := h.profileInput(w, r)
	if !ok {
		return
	}
	p, err := h.profiles.Create(r.Context(), uid(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, toProfileJSON(p))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	in, ok := h.profileInput(w, r)
	if !ok {
		return
	}
	p, err := h.profiles.Update(r.Context(), uid(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, toProfileJSON(p))
}

func (h *Handler) profileInput(w http.ResponseWriter, r *http.Request) (service.ProfileInput, bool) {
	var req profileRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return service.ProfileInput{}, false
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, err)
		return service.ProfileInput{}, false
	}
	return in, true
}
