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
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, name, employee_id, COALESCE(department, ''), hire_date, COALESCE(email, ''), COALESCE(phone, '')`

// CreateEmployee inserts an employee and sets its ID. A taken employee
// number returns generic.ErrDuplicateEmployeeNumber.
func (s *Store) CreateEmployee(ctx context.Context, emp *timeoff.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (name, employee_id, department, hire_date, email, phone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		emp.Name, emp.Number, nullString(emp.Department), formatDate(emp.HireDate),
		nullString(emp.Email), nullString(emp.Phone), formatTime(time.Now()),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("employee number %q: %w", emp.Number, generic.ErrDuplicateEmployeeNumber)
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	emp.ID = generic.EntityID(id)
	return nil
}

// GetEmployee returns generic.ErrEmployeeNotFound if absent.
func (s *Store) GetEmployee(ctx context.Context, id generic.EntityID) (*timeoff.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns every employee ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]timeoff.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []timeoff.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// UpdateEmployee overwrites every field except ID.
func (s *Store) UpdateEmployee(ctx context.Context, emp timeoff.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET name = ?, employee_id = ?, department = ?, hire_date = ?, email = ?, phone = ?
		 WHERE id = ?`,
		emp.Name, emp.Number, nullString(emp.Department), formatDate(emp.HireDate),
		nullString(emp.Email), nullString(emp.Phone), emp.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("employee number %q: %w", emp.Number, generic.ErrDuplicateEmployeeNumber)
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return affectedOrNotFound(res, generic.ErrEmployeeNotFound)
}

// DeleteEmployee removes an employee; leave rows cascade. It returns the
// certificate keys of the deleted sick leave so callers can remove the objects.
func (s *Store) DeleteEmployee(ctx context.Context, id generic.EntityID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT medical_cert FROM sick_leave WHERE employee_id = ? AND COALESCE(medical_cert, '') != '' ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete employee: %w", err)
	}
	if err := affectedOrNotFound(res, generic.ErrEmployeeNotFound); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return keys, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (timeoff.Employee, error) {
	var emp timeoff.Employee
	var id int64
	var hireDate string
	if err := row.Scan(&id, &emp.Name, &emp.Number, &emp.Department, &hireDate, &emp.Email, &emp.Phone); err != nil {
		return timeoff.Employee{}, err
	}
	hire, err := parseDate("hire_date", hireDate)
	if err != nil {
		return timeoff.Employee{}, err
	}
	emp.ID = generic.EntityID(id)
	emp.HireDate = hire
	return emp, nil
}
