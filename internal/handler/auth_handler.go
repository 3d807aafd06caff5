package handler

import (
	"net/http"
	"time"

	"pregnancy-planner-api/internal/render"
	"pregnancy-planner-api/internal/service"
)

type userJSON struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionJSON struct {
	User         userJSON `json:"user"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
}

func toSessionJSON(s *service.Session) sessionJSON {
	return sessionJSON{
		User: userJSON{
			ID:        s.User.ID,
			Username:  s.User.Username,
			CreatedAt: s.User.CreatedAt,
		},
		Token:        s.Token,
		RefreshToken: s.RefreshToken,
	}
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in service.Credentials
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.accounts.SignUp(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, toSessionJSON(sess))
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in service.Credentials
	if err := decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.accounts.SignIn(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, toSessionJSON(sess))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, toSessionJSON(sess))
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SignOut(r.Context(), uid(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
