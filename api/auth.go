package api

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/warp/leave-manager/auth"
	"go.uber.org/zap"
)

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// Login checks credentials and sets the session cookie. Accepts JSON or a
// form post.
// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeForm(r, &req, func() {
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	}); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Auth.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidUsername) || errors.Is(err, auth.ErrInvalidPassword) {
			h.Logger.Info("login rejected", zap.String("username", req.Username), zap.Error(err))
			writeError(w, http.StatusUnauthorized, auth.Message(err), nil)
			return
		}
		h.fail(w, r, "Login failed", err)
		return
	}

	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	writeJSON(w, http.StatusOK, LoginResponse{
		Username:            res.Principal.Username,
		Token:               res.Token,
		ExpiresAt:           res.ExpiresAt.UTC().Format(time.RFC3339),
		ForcePasswordChange: res.ForcePasswordChange,
	})
}

// ChangePassword sets a new password for the caller.
// POST /change-password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.Message(auth.ErrUnauthenticated), nil)
		return
	}

	var req ChangePasswordRequest
	if err := decodeForm(r, &req, func() {
		req.NewPassword = r.PostFormValue("new_password")
		req.ConfirmPassword = r.PostFormValue("confirm_password")
	}); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), *p, req.NewPassword, req.ConfirmPassword); err != nil {
		if auth.IsPasswordRuleError(err) {
			writeError(w, http.StatusBadRequest, auth.Message(err), nil)
			return
		}
		h.fail(w, r, "Failed to change password", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password changed"})
}

// Logout revokes the caller's session, if any, and clears the cookie.
// POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.token(r); token != "" {
		if p, err := h.Auth.Authenticate(r.Context(), token); err == nil {
			if err := h.Auth.Logout(r.Context(), p.SessionID); err != nil {
				h.Logger.Warn("logout failed", zap.String("session_id", p.SessionID), zap.Error(err))
			}
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// Me returns the caller.
// GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	writeJSON(w, http.StatusOK, MeDTO{Username: p.Username, ForcePasswordChange: !p.PasswordChanged})
}

// =============================================================================
// COOKIES
// =============================================================================

// token reads the session cookie, falling back to a bearer header.
func (h *Handler) token(r *http.Request) string {
	if c, err := r.Cookie(h.Options.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if v, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Options.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.Options.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Options.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Options.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// maxFormMemory bounds an auth form held in memory.
const maxFormMemory = 64 << 10

// decodeForm decodes a JSON body, or runs fromForm for form posts.
func decodeForm(r *http.Request, v any, fromForm func()) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return err
		}
	case "multipart/form-data":
		// ParseForm skips multipart bodies and would leave PostForm empty.
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return err
		}
		defer r.MultipartForm.RemoveAll()
	default:
		return decodeJSON(r, v)
	}
	fromForm()
	return nil
}
