/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RealIP:        Client address from proxy headers
  3. RequestLogger: zap line per request
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. CORS:          Cross-origin requests for a separately served frontend

ROUTE GROUPS:
  /healthz              Liveness (public)
  /login                Session login (public)
  /logout               Session logout (public, no-op without a session)
  /change-password      Authenticated, allowed before the first change
  /api/me               Authenticated, allowed before the first change
  /api/*                Authenticated, password must have been changed
  /*                    Static dashboard, when configured

SEE ALSO:
  - handlers.go, leave.go, auth.go: Handler implementations
  - middleware.go: Auth gates and request logging
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/leave-manager/timeoff"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.Options.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)

	// Session routes
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.With(h.RequireAuth).Post("/change-password", h.ChangePassword)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/me", h.Me)

		r.Group(func(r chi.Router) {
			r.Use(h.RequirePasswordChanged)

			// Employee routes
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.Put("/{id}", h.UpdateEmployee)
				r.Delete("/{id}", h.DeleteEmployee)
				r.Get("/{id}/balance", h.GetBalance)
			})

			// Annual leave routes
			r.Route("/annual-leave", func(r chi.Router) {
				r.Get("/", h.ListLeave(timeoff.LeaveAnnual))
				r.Post("/", h.CreateLeave(timeoff.LeaveAnnual))
				r.Put("/{id}", h.UpdateLeave(timeoff.LeaveAnnual))
				r.Delete("/{id}", h.DeleteLeave(timeoff.LeaveAnnual))
			})

			// Sick leave routes
			r.Route("/sick-leave", func(r chi.Router) {
				r.Get("/", h.ListLeave(timeoff.LeaveSick))
				r.Post("/", h.CreateLeave(timeoff.LeaveSick))
				r.Put("/{id}", h.UpdateLeave(timeoff.LeaveSick))
				r.Delete("/{id}", h.DeleteLeave(timeoff.LeaveSick))
				r.Post("/{id}/certificate", h.UploadCertificate)
				r.Get("/{id}/certificate", h.DownloadCertificate)
			})

			r.Get("/view-leave", h.ViewLeave)
			r.Get("/leave-policy", h.LeavePolicy)

			// Report routes
			r.Route("/reports", func(r chi.Router) {
				r.Get("/balances.pdf", h.BalancesPDF)
				r.Get("/balances.xlsx", h.BalancesXLSX)
			})
		})
	})

	mountStatic(r, h.Options.StaticDir)
	return r
}

// mountStatic serves the dashboard with index.html as the fallback for
// client-side routes. Without a directory, / gets a short API index.
func mountStatic(r chi.Router, staticDir string) {
	if staticDir != "" {
		if _, err := os.Stat(staticDir); err == nil {
			fileServer := http.FileServer(http.Dir(staticDir))
			r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
				fullPath := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
				if _, err := os.Stat(fullPath); os.IsNotExist(err) {
					http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
					return
				}
				fileServer.ServeHTTP(w, r)
			})
			return
		}
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Leave Manager</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Leave Manager API</h1>
<p>No dashboard configured. Set <code>server.static_dir</code> to serve one.</p>
<h2>API Endpoints</h2>
<ul>
<li>POST /login, POST /change-password, POST /logout</li>
<li><a href="/api/employees">/api/employees</a> - Employees with balances</li>
<li><a href="/api/view-leave">/api/view-leave</a> - All leave records</li>
<li><a href="/api/reports/balances.pdf">/api/reports/balances.pdf</a> - Balance report</li>
</ul>
</body>
</html>`))
	})
}
