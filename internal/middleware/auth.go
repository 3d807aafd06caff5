package middleware

import (
	"context"
	"net/http"
	"strings"

	"pregnancy-planner-api/internal/auth"
	"pregnancy-planner-api/internal/render"
)

type ctxKey string

const UserIDKey ctxKey = "uid"

func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, UserIDKey, uid)
}

func UserID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserIDKey).(string)
	return uid, ok && uid != ""
}

// Auth resolves "Authorization: Bearer <jwt>" to a user id on the request
// context, or answers 401.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			raw := ""
			if strings.HasPrefix(h, "Bearer ") {
				raw = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}
			if raw == "" {
				render.Error(w, http.StatusUnauthorized, "no token")
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				render.Error(w, http.StatusUnauthorized, "bad token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}
