package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/warp/leave-manager/certstore"
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/store/sqlite"
	"github.com/warp/leave-manager/timeoff"
	"go.uber.org/zap"
)

// =============================================================================
// LEAVE RECORDS
// =============================================================================

// ListLeave returns records of one type, newest first.
// GET /api/annual-leave?employee_id=, GET /api/sick-leave?employee_id=
func (h *Handler) ListLeave(lt timeoff.LeaveType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := leaveFilter(r)
		if err != nil {
			h.fail(w, r, "Invalid employee_id", err)
			return
		}

		rows, err := h.Store.ListLeave(r.Context(), lt, filter)
		if err != nil {
			h.fail(w, r, "Failed to list leave", err)
			return
		}
		writeJSON(w, http.StatusOK, toLeaveDTOs(rows))
	}
}

// CreateLeave records leave taken.
// POST /api/annual-leave, POST /api/sick-leave
func (h *Handler) CreateLeave(lt timeoff.LeaveType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LeaveRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		rec, err := req.toRecord(lt)
		if err != nil {
			h.fail(w, r, "Invalid leave record", err)
			return
		}
		if err := h.Store.CreateLeave(r.Context(), &rec); err != nil {
			h.fail(w, r, "Failed to create leave", err)
			return
		}

		row, err := h.Store.GetLeave(r.Context(), lt, rec.ID)
		if err != nil {
			h.fail(w, r, "Failed to load leave", err)
			return
		}
		h.Logger.Info("leave recorded",
			zap.String("type", string(lt)),
			zap.Int64("id", int64(rec.ID)),
			zap.Int64("employee_id", int64(rec.EmployeeID)),
			zap.String("days_used", rec.DaysUsed.String()),
		)
		writeJSON(w, http.StatusCreated, toLeaveDTO(*row))
	}
}

// UpdateLeave overwrites a record.
// PUT /api/annual-leave/{id}, PUT /api/sick-leave/{id}
func (h *Handler) UpdateLeave(lt timeoff.LeaveType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := recordParam(r)
		if err != nil {
			h.fail(w, r, "Invalid leave id", err)
			return
		}

		var req LeaveRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
		rec, err := req.toRecord(lt)
		if err != nil {
			h.fail(w, r, "Invalid leave record", err)
			return
		}
		rec.ID = id

		if err := h.Store.UpdateLeave(r.Context(), rec); err != nil {
			h.fail(w, r, "Failed to update leave", err)
			return
		}
		row, err := h.Store.GetLeave(r.Context(), lt, id)
		if err != nil {
			h.fail(w, r, "Failed to load leave", err)
			return
		}
		writeJSON(w, http.StatusOK, toLeaveDTO(*row))
	}
}

// DeleteLeave removes a record and, for sick leave, its certificate.
// DELETE /api/annual-leave/{id}, DELETE /api/sick-leave/{id}
func (h *Handler) DeleteLeave(lt timeoff.LeaveType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := recordParam(r)
		if err != nil {
			h.fail(w, r, "Invalid leave id", err)
			return
		}

		row, err := h.Store.DeleteLeave(r.Context(), lt, id)
		if err != nil {
			h.fail(w, r, "Failed to delete leave", err)
			return
		}
		h.removeCertificate(r, row.MedicalCert)

		h.Logger.Info("leave deleted", zap.String("type", string(lt)), zap.Int64("id", int64(id)))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ViewLeave returns leave records joined with employee details. ?type=
// narrows the result to one leave type; the other list is empty.
// GET /api/view-leave?employee_id=&type=
func (h *Handler) ViewLeave(w http.ResponseWriter, r *http.Request) {
	filter, err := leaveFilter(r)
	if err != nil {
		h.fail(w, r, "Invalid employee_id", err)
		return
	}
	types := []timeoff.LeaveType{timeoff.LeaveAnnual, timeoff.LeaveSick}
	if s := r.URL.Query().Get("type"); s != "" {
		lt, ok := timeoff.ParseLeaveType(s)
		if !ok {
			h.fail(w, r, "Invalid leave type", &generic.ParseError{Field: "type", Value: s, Err: errors.New("must be annual or sick")})
			return
		}
		types = []timeoff.LeaveType{lt}
	}

	view := ViewLeaveDTO{Annual: []LeaveDTO{}, Sick: []LeaveDTO{}}
	for _, lt := range types {
		rows, err := h.Store.ListLeave(r.Context(), lt, filter)
		if err != nil {
			h.fail(w, r, "Failed to list leave", err)
			return
		}
		if lt == timeoff.LeaveAnnual {
			view.Annual = toLeaveDTOs(rows)
		} else {
			view.Sick = toLeaveDTOs(rows)
		}
	}
	writeJSON(w, http.StatusOK, view)
}

func leaveFilter(r *http.Request) (sqlite.LeaveFilter, error) {
	s := r.URL.Query().Get("employee_id")
	if s == "" {
		return sqlite.LeaveFilter{}, nil
	}
	id, err := positiveParam(s, "employee_id")
	return sqlite.LeaveFilter{EmployeeID: generic.EntityID(id)}, err
}

func (req LeaveRequest) toRecord(lt timeoff.LeaveType) (timeoff.LeaveRecord, error) {
	if req.EmployeeID <= 0 {
		return timeoff.LeaveRecord{}, &generic.ValidationError{Field: "employee_id", Message: "is required"}
	}
	start, err := generic.ParseDate("start_date", req.StartDate)
	if err != nil {
		return timeoff.LeaveRecord{}, err
	}
	end, err := generic.ParseDate("end_date", req.EndDate)
	if err != nil {
		return timeoff.LeaveRecord{}, err
	}
	status, err := timeoff.ParseStatus(req.Status)
	if err != nil {
		return timeoff.LeaveRecord{}, err
	}

	rec := timeoff.LeaveRecord{
		EmployeeID: generic.EntityID(req.EmployeeID),
		Type:       lt,
		Start:      start,
		End:        end,
		DaysUsed:   generic.Days(req.DaysUsed),
		Reason:     req.Reason,
		Status:     status,
	}
	return rec, rec.Validate()
}

// =============================================================================
// MEDICAL CERTIFICATES
// =============================================================================

// UploadCertificate stores a multipart "file" and attaches it to a sick
// leave record, replacing any previous certificate.
// POST /api/sick-leave/{id}/certificate
func (h *Handler) UploadCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := recordParam(r)
	if err != nil {
		h.fail(w, r, "Invalid leave id", err)
		return
	}
	if _, err := h.Store.GetLeave(r.Context(), timeoff.LeaveSick, id); err != nil {
		h.fail(w, r, "Failed to load leave", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Options.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Options.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Certificate too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file", err)
		return
	}
	defer file.Close()

	key, contentType, err := certstore.NewKey(header.Filename)
	if err != nil {
		h.fail(w, r, "Unsupported certificate type", err)
		return
	}
	if err := h.Certs.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		h.fail(w, r, "Failed to store certificate", err)
		return
	}

	previous, err := h.Store.SetCertificate(r.Context(), id, key)
	if err != nil {
		h.removeCertificate(r, key)
		h.fail(w, r, "Failed to attach certificate", err)
		return
	}
	h.removeCertificate(r, previous)

	h.Logger.Info("certificate uploaded", zap.Int64("leave_id", int64(id)), zap.String("key", key), zap.Int64("size", header.Size))
	writeJSON(w, http.StatusCreated, CertificateDTO{LeaveID: int64(id), Key: key, ContentType: contentType, Size: header.Size})
}

// DownloadCertificate streams the certificate back.
// GET /api/sick-leave/{id}/certificate
func (h *Handler) DownloadCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := recordParam(r)
	if err != nil {
		h.fail(w, r, "Invalid leave id", err)
		return
	}
	row, err := h.Store.GetLeave(r.Context(), timeoff.LeaveSick, id)
	if err != nil {
		h.fail(w, r, "Failed to load leave", err)
		return
	}
	if row.MedicalCert == "" {
		h.fail(w, r, "No certificate", fmt.Errorf("sick leave %d: %w", id, generic.ErrCertificateNotFound))
		return
	}

	obj, err := h.Certs.Get(r.Context(), row.MedicalCert)
	if err != nil {
		h.fail(w, r, "Failed to load certificate", err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, path.Base(row.MedicalCert)))
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.Logger.Warn("certificate stream interrupted", zap.String("key", row.MedicalCert), zap.Error(err))
	}
}

// removeCertificate deletes an object whose row is gone. Failures only
// leave an orphan behind, so they are logged rather than returned.
func (h *Handler) removeCertificate(r *http.Request, key string) {
	if key == "" || h.Certs == nil {
		return
	}
	if err := h.Certs.Delete(context.WithoutCancel(r.Context()), key); err != nil {
		h.Logger.Warn("certificate cleanup failed", zap.String("key", key), zap.Error(err))
	}
}
