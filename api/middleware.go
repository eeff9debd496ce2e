package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/leave-manager/auth"
	"go.uber.org/zap"
)

// PasswordChangeRequired is the error body for callers still on their
// initial password.
const PasswordChangeRequired = "password_change_required"

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// RequireAuth rejects requests without a live session and attaches the
// principal to the context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.token(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, auth.Message(auth.ErrUnauthenticated), nil)
			return
		}

		p, err := h.Auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, auth.Message(err), nil)
				return
			}
			h.fail(w, r, "Authentication failed", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// RequirePasswordChanged blocks callers who must still change their
// password. Mount after RequireAuth.
func (h *Handler) RequirePasswordChanged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, auth.Message(auth.ErrUnauthenticated), nil)
			return
		}
		if !p.PasswordChanged {
			writeError(w, http.StatusForbidden, PasswordChangeRequired, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
