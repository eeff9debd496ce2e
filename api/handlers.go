/*
handlers.go - HTTP API handlers for the leave manager

PURPOSE:
  Exposes employees, leave records and computed balances via a REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  store and the balance engine.

ENDPOINTS:
  Employees:
    GET    /api/employees               List employees with balances
    POST   /api/employees               Create employee
    GET    /api/employees/{id}          Get employee with balances
    PUT    /api/employees/{id}          Update employee
    DELETE /api/employees/{id}          Delete employee (leave cascades)
    GET    /api/employees/{id}/balance  Detailed balance breakdown

  Leave (leave.go):
    GET|POST       /api/annual-leave, /api/sick-leave
    PUT|DELETE     /api/annual-leave/{id}, /api/sick-leave/{id}
    GET            /api/view-leave?type=annual|sick
    POST|GET       /api/sick-leave/{id}/certificate

  Policy:
    GET    /api/leave-policy            Accrual policy in effect

  Reports:
    GET    /api/reports/balances.pdf
    GET    /api/reports/balances.xlsx

  Balance and report endpoints accept ?as_of=YYYY-MM-DD; the default is
  the balance service's today.

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Balances: the accrual engine bound to the store
  - Auth: sessions and passwords
  - Certs: medical certificate objects

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or dead session
  - 403: Password change required
  - 404: Resource not found
  - 409: Duplicate employee number
  - 500: Internal errors (details logged, not returned)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/warp/leave-manager/auth"
	"github.com/warp/leave-manager/certstore"
	"github.com/warp/leave-manager/factory"
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/report"
	"github.com/warp/leave-manager/store/sqlite"
	"github.com/warp/leave-manager/timeoff"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options are the HTTP-facing settings.
type Options struct {
	CookieName     string
	CookieSecure   bool
	MaxUploadBytes int64
	CORSOrigins    []string
	StaticDir      string
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Balances *timeoff.BalanceService
	Auth     *auth.Service
	Certs    certstore.Store
	Logger   *zap.Logger
	Options  Options
}

// NewHandler creates a new handler. A nil logger discards output.
func NewHandler(store *sqlite.Store, balances *timeoff.BalanceService, authSvc *auth.Service, certs certstore.Store, logger *zap.Logger, opts Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CookieName == "" {
		opts.CookieName = "leave_session"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		Store:    store,
		Balances: balances,
		Auth:     authSvc,
		Certs:    certs,
		Logger:   logger,
		Options:  opts,
	}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health pings the database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.Logger.Error("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees with their balances.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	today, err := h.asOf(r)
	if err != nil {
		h.fail(w, r, "Invalid as_of date", err)
		return
	}

	entries, err := h.balanceEntries(r, today)
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEmployeeDTO(e.Employee, e.Balances)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee with balances.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := entityParam(r)
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}
	today, err := h.asOf(r)
	if err != nil {
		h.fail(w, r, "Invalid as_of date", err)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	balances, err := h.Balances.BalancesAt(r.Context(), id, today)
	if err != nil {
		h.fail(w, r, "Failed to compute balances", err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp, balances))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp, err := req.toEmployee(timeoff.Employee{})
	if err != nil {
		h.fail(w, r, "Invalid employee", err)
		return
	}
	if err := h.Store.CreateEmployee(r.Context(), &emp); err != nil {
		h.fail(w, r, "Failed to create employee", err)
		return
	}

	h.Logger.Info("employee created", zap.Int64("id", int64(emp.ID)), zap.String("employee_id", emp.Number))
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp, h.Balances.Compute(emp, nil, nil, h.Balances.Today())))
}

// UpdateEmployee replaces name, number and hire date. Contact fields are
// replaced only when present in the body.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := entityParam(r)
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}

	var req EmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	current, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to update employee", err)
		return
	}
	emp, err := req.toEmployee(*current)
	if err != nil {
		h.fail(w, r, "Invalid employee", err)
		return
	}

	if err := h.Store.UpdateEmployee(r.Context(), emp); err != nil {
		h.fail(w, r, "Failed to update employee", err)
		return
	}
	balances, err := h.Balances.Balances(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to compute balances", err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(emp, balances))
}

// DeleteEmployee removes an employee, their leave and their certificates.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := entityParam(r)
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}

	keys, err := h.Store.DeleteEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to delete employee", err)
		return
	}
	for _, key := range keys {
		h.removeCertificate(r, key)
	}

	h.Logger.Info("employee deleted", zap.Int64("id", int64(id)), zap.Int("certificates", len(keys)))
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance returns the detailed breakdown. Unknown employees get zero
// balances, matching the engine.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, err := entityParam(r)
	if err != nil {
		h.fail(w, r, "Invalid employee id", err)
		return
	}
	today, err := h.asOf(r)
	if err != nil {
		h.fail(w, r, "Invalid as_of date", err)
		return
	}

	balances, err := h.Balances.BalancesAt(r.Context(), id, today)
	if err != nil {
		h.fail(w, r, "Failed to compute balances", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(id, balances, h.Balances.Annual.Cap))
}

// LeavePolicy returns the accrual policy in effect, in config document form.
// GET /api/leave-policy
func (h *Handler) LeavePolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.NewPolicyFactory().ToJSON(h.Balances.Annual, h.Balances.Sick))
}

// toEmployee applies the request on top of base, which is the stored
// employee on update and the zero value on create.
func (req EmployeeRequest) toEmployee(base timeoff.Employee) (timeoff.Employee, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return timeoff.Employee{}, &generic.ValidationError{Field: "name", Message: "is required"}
	}
	number := strings.TrimSpace(req.EmployeeID)
	if number == "" {
		return timeoff.Employee{}, &generic.ValidationError{Field: "employee_id", Message: "is required"}
	}
	hire, err := generic.ParseDate("hire_date", req.HireDate)
	if err != nil {
		return timeoff.Employee{}, err
	}
	emp := base
	emp.Number = number
	emp.Name = name
	emp.HireDate = hire
	setOptional(&emp.Department, req.Department)
	setOptional(&emp.Email, req.Email)
	setOptional(&emp.Phone, req.Phone)
	return emp, nil
}

func setOptional(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// =============================================================================
// REPORTS
// =============================================================================

// BalancesPDF downloads the balance report as PDF.
func (h *Handler) BalancesPDF(w http.ResponseWriter, r *http.Request) {
	h.writeReport(w, r, "application/pdf", "pdf", report.WritePDF)
}

// BalancesXLSX downloads the balance report as a workbook.
func (h *Handler) BalancesXLSX(w http.ResponseWriter, r *http.Request) {
	h.writeReport(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", report.WriteXLSX)
}

func (h *Handler) writeReport(w http.ResponseWriter, r *http.Request, contentType, ext string, render func(io.Writer, report.Report) error) {
	today, err := h.asOf(r)
	if err != nil {
		h.fail(w, r, "Invalid as_of date", err)
		return
	}
	entries, err := h.balanceEntries(r, today)
	if err != nil {
		h.fail(w, r, "Failed to build report", err)
		return
	}

	// Render fully before writing so a failure can still become a 500.
	var buf bytes.Buffer
	if err := render(&buf, report.Build(today, entries)); err != nil {
		h.fail(w, r, "Failed to render report", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leave-balances-%s.%s"`, today, ext))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// balanceEntries computes every employee's balances with three queries
// instead of one per employee.
func (h *Handler) balanceEntries(r *http.Request, today generic.TimePoint) ([]report.Entry, error) {
	ctx := r.Context()
	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	annual, err := h.Store.LeaveByEmployee(ctx, timeoff.LeaveAnnual)
	if err != nil {
		return nil, err
	}
	sick, err := h.Store.LeaveByEmployee(ctx, timeoff.LeaveSick)
	if err != nil {
		return nil, err
	}

	entries := make([]report.Entry, len(employees))
	for i, emp := range employees {
		entries[i] = report.Entry{
			Employee: emp,
			Balances: h.Balances.Compute(emp, annual[emp.ID], sick[emp.ID], today),
		}
	}
	return entries, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) asOf(r *http.Request) (generic.TimePoint, error) {
	s := r.URL.Query().Get("as_of")
	if s == "" {
		return h.Balances.Today(), nil
	}
	return generic.ParseDate("as_of", s)
}

func entityParam(r *http.Request) (generic.EntityID, error) {
	id, err := positiveParam(chi.URLParam(r, "id"), "id")
	return generic.EntityID(id), err
}

func recordParam(r *http.Request) (generic.RecordID, error) {
	id, err := positiveParam(chi.URLParam(r, "id"), "id")
	return generic.RecordID(id), err
}

func positiveParam(s, field string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, &generic.ParseError{Field: field, Value: s, Err: errors.New("must be a positive integer")}
	}
	return n, nil
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// fail maps an error to its status. Internal errors are logged and their
// details withheld from the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err), errors.Is(err, certstore.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.Error(message,
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
