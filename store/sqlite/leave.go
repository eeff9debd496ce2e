package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/timeoff"
)

// =============================================================================
// LEAVE RECORDS (annual_leave, sick_leave)
// =============================================================================

// LeaveRow is a leave record joined with its employee.
type LeaveRow struct {
	timeoff.LeaveRecord
	EmployeeName   string
	EmployeeNumber string
}

// LeaveFilter narrows ListLeave. Zero EmployeeID means every employee.
type LeaveFilter struct {
	EmployeeID generic.EntityID
}

type leaveTable struct {
	name string
	cert string // certificate column expression
}

func tableFor(lt timeoff.LeaveType) (leaveTable, error) {
	switch lt {
	case timeoff.LeaveAnnual:
		return leaveTable{name: "annual_leave", cert: "''"}, nil
	case timeoff.LeaveSick:
		return leaveTable{name: "sick_leave", cert: "COALESCE(l.medical_cert, '')"}, nil
	default:
		return leaveTable{}, fmt.Errorf("unknown leave type %q", lt)
	}
}

func (t leaveTable) selectRows() string {
	return `SELECT l.id, l.employee_id, l.start_date, l.end_date, COALESCE(l.reason, ''), l.days_used, l.status, ` + t.cert + `,
	               e.name, e.employee_id
	        FROM ` + t.name + ` l
	        JOIN employees e ON e.id = l.employee_id`
}

// CreateLeave validates and inserts a record, setting its ID. An unknown
// employee returns generic.ErrEmployeeNotFound. MedicalCert is ignored:
// only SetCertificate attaches certificates.
func (s *Store) CreateLeave(ctx context.Context, rec *timeoff.LeaveRecord) error {
	t, err := tableFor(rec.Type)
	if err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.Status == "" {
		rec.Status = timeoff.StatusApproved
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+t.name+` (employee_id, start_date, end_date, reason, days_used, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.EmployeeID, formatDate(rec.Start), formatDate(rec.End), nullString(rec.Reason),
		rec.DaysUsed.Value.String(), string(rec.Status), formatTime(time.Now()),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("employee %d: %w", rec.EmployeeID, generic.ErrEmployeeNotFound)
		}
		return fmt.Errorf("failed to create %s leave: %w", rec.Type, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = generic.RecordID(id)
	return nil
}

// GetLeave returns generic.ErrLeaveNotFound if absent.
func (s *Store) GetLeave(ctx context.Context, lt timeoff.LeaveType, id generic.RecordID) (*LeaveRow, error) {
	t, err := tableFor(lt)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row, err := scanLeaveRow(s.db.QueryRowContext(ctx, t.selectRows()+` WHERE l.id = ?`, id), lt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrLeaveNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListLeave returns records newest first.
func (s *Store) ListLeave(ctx context.Context, lt timeoff.LeaveType, filter LeaveFilter) ([]LeaveRow, error) {
	t, err := tableFor(lt)
	if err != nil {
		return nil, err
	}

	query := t.selectRows()
	var args []any
	if filter.EmployeeID != 0 {
		query += ` WHERE l.employee_id = ?`
		args = append(args, filter.EmployeeID)
	}
	query += ` ORDER BY l.start_date DESC, l.id DESC`

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLeaveRows(ctx, lt, query, args...)
}

func (s *Store) queryLeaveRows(ctx context.Context, lt timeoff.LeaveType, query string, args ...any) ([]LeaveRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LeaveRow{}
	for rows.Next() {
		r, err := scanLeaveRow(rows, lt)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateLeave overwrites a record. The stored certificate is never touched.
func (s *Store) UpdateLeave(ctx context.Context, rec timeoff.LeaveRecord) error {
	t, err := tableFor(rec.Type)
	if err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.Status == "" {
		rec.Status = timeoff.StatusApproved
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+t.name+` SET employee_id = ?, start_date = ?, end_date = ?, reason = ?, days_used = ?, status = ?
		 WHERE id = ?`,
		rec.EmployeeID, formatDate(rec.Start), formatDate(rec.End), nullString(rec.Reason),
		rec.DaysUsed.Value.String(), string(rec.Status), rec.ID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("employee %d: %w", rec.EmployeeID, generic.ErrEmployeeNotFound)
		}
		return fmt.Errorf("failed to update %s leave: %w", rec.Type, err)
	}
	return affectedOrNotFound(res, generic.ErrLeaveNotFound)
}

// DeleteLeave removes a record and returns what was deleted, so callers can
// clean up its certificate.
func (s *Store) DeleteLeave(ctx context.Context, lt timeoff.LeaveType, id generic.RecordID) (*LeaveRow, error) {
	t, err := tableFor(lt)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row, err := scanLeaveRow(tx.QueryRowContext(ctx, t.selectRows()+` WHERE l.id = ?`, id), lt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrLeaveNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+t.name+` WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete %s leave: %w", lt, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &row, nil
}

// SetCertificate records a certificate key on a sick-leave row and returns
// the key it replaced, if any.
func (s *Store) SetCertificate(ctx context.Context, id generic.RecordID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var previous string
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(medical_cert, '') FROM sick_leave WHERE id = ?`, id).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return "", generic.ErrLeaveNotFound
	}
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sick_leave SET medical_cert = ? WHERE id = ?`, nullString(key), id); err != nil {
		return "", fmt.Errorf("failed to set certificate: %w", err)
	}
	return previous, tx.Commit()
}

// =============================================================================
// RECORD STORE (timeoff.RecordStore)
// =============================================================================

var _ timeoff.RecordStore = (*Store)(nil)

// LeaveForEmployee returns all of an employee's records of one type.
func (s *Store) LeaveForEmployee(ctx context.Context, employeeID generic.EntityID, lt timeoff.LeaveType) ([]timeoff.LeaveRecord, error) {
	rows, err := s.ListLeave(ctx, lt, LeaveFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	return records(rows), nil
}

// LeaveByEmployee returns every record of one type grouped by employee, for
// computing many balances from a single query.
func (s *Store) LeaveByEmployee(ctx context.Context, lt timeoff.LeaveType) (map[generic.EntityID][]timeoff.LeaveRecord, error) {
	rows, err := s.ListLeave(ctx, lt, LeaveFilter{})
	if err != nil {
		return nil, err
	}
	grouped := make(map[generic.EntityID][]timeoff.LeaveRecord)
	for _, r := range rows {
		grouped[r.EmployeeID] = append(grouped[r.EmployeeID], r.LeaveRecord)
	}
	return grouped, nil
}

func records(rows []LeaveRow) []timeoff.LeaveRecord {
	out := make([]timeoff.LeaveRecord, len(rows))
	for i, r := range rows {
		out[i] = r.LeaveRecord
	}
	return out
}

func scanLeaveRow(row scanner, lt timeoff.LeaveType) (LeaveRow, error) {
	var r LeaveRow
	var id, employeeID int64
	var start, end, daysUsed, status string
	err := row.Scan(&id, &employeeID, &start, &end, &r.Reason, &daysUsed, &status, &r.MedicalCert,
		&r.EmployeeName, &r.EmployeeNumber)
	if err != nil {
		return LeaveRow{}, err
	}

	if r.Start, err = parseDate("start_date", start); err != nil {
		return LeaveRow{}, err
	}
	if r.End, err = parseDate("end_date", end); err != nil {
		return LeaveRow{}, err
	}
	r.ID = generic.RecordID(id)
	r.EmployeeID = generic.EntityID(employeeID)
	r.Type = lt
	if r.DaysUsed, err = parseAmount("days_used", daysUsed); err != nil {
		return LeaveRow{}, err
	}
	r.Status = timeoff.Status(status)
	return r, nil
}
