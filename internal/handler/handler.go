package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pregnancy-planner-api/internal/middleware"
	"pregnancy-planner-api/internal/render"
	"pregnancy-planner-api/internal/service"
)

const maxBody = 1 << 20

type Handler struct {
	appointments *service.Appointments
	profiles     *service.Profiles
	accounts     *service.Accounts
	log          *zap.Logger
}

func New(ap *service.Appointments, pr *service.Profiles, ac *service.Accounts, log *zap.Logger) *Handler {
	return &Handler{appointments: ap, profiles: pr, accounts: ac, log: log}
}

type RouterOptions struct {
	Secret     string
	CORSOrigin string
	Limiter    *middleware.RateLimiter // nil disables auth rate limiting
	Health     func(ctx context.Context) error
}

func (h *Handler) Router(o RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(h.log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(o.CORSOrigin))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Pregnancy Planner"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if o.Health != nil {
			if err := o.Health(r.Context()); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})

	requireAuth := middleware.Auth(o.Secret)

	r.Route("/auth", func(r chi.Router) {
		if o.Limiter != nil {
			r.Use(middleware.RateLimit(o.Limiter))
		}
		r.Post("/sign-up", h.SignUp)
		r.Post("/sign-in", h.SignIn)
		r.Post("/refresh", h.Refresh)
		r.With(requireAuth).Post("/sign-out", h.SignOut)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", h.CreateAppointment)
			r.Get("/", h.ListAppointments)
			r.Get("/{id}", h.GetAppointment)
			r.Put("/{id}", h.UpdateAppointment)
			r.Delete("/{id}", h.DeleteAppointment)
		})

		r.Get("/profile", h.GetProfile)
		r.Post("/profile", h.CreateProfile)
		r.Put("/profile", h.UpdateProfile)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		render.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		render.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func uid(r *http.Request) string {
	id, _ := middleware.UserID(r.Context())
	return id
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return status.Error(codes.InvalidArgument, "request body is required")
		}
		return status.Error(codes.InvalidArgument, "invalid JSON body")
	}
	// exactly one JSON value per body
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return status.Error(codes.InvalidArgument, "invalid JSON body")
	}
	return nil
}

// fail renders err; internal failures are also logged with the request id.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := render.Status(w, err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.String("user_id", uid(r)),
			zap.Error(err),
		)
	}
}
