// Package timeoff implements the leave-accrual rules.
// It uses the generic primitives with annual and sick leave policies.
package timeoff

import (
	"strings"

	"github.com/warp/leave-manager/generic"
)

// =============================================================================
// LEAVE TYPE
// =============================================================================

// LeaveType identifies which ledger a leave record belongs to.
type LeaveType string

const (
	LeaveAnnual LeaveType = "annual"
	LeaveSick   LeaveType = "sick"
)

// ParseLeaveType accepts "annual" or "sick" in any case.
func ParseLeaveType(s string) (LeaveType, bool) {
	switch LeaveType(strings.ToLower(strings.TrimSpace(s))) {
	case LeaveAnnual:
		return LeaveAnnual, true
	case LeaveSick:
		return LeaveSick, true
	default:
		return "", false
	}
}

// =============================================================================
// STATUS
// =============================================================================

// Status is the approval state of a leave record. Only approved records
// consume balance.
type Status string

const (
	StatusApproved Status = "Approved"
	StatusPending  Status = "Pending"
	StatusRejected Status = "Rejected"
)

// ParseStatus is case-insensitive; an empty string means Approved.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "approved":
		return StatusApproved, nil
	case "pending":
		return StatusPending, nil
	case "rejected":
		return StatusRejected, nil
	default:
		return "", &generic.ParseError{Field: "status", Value: s, Err: generic.ErrInvalidStatus}
	}
}

// =============================================================================
// RECORDS
// =============================================================================

// Employee is the subset of an employee record the engine and API need.
type Employee struct {
	ID         generic.EntityID
	Number     string // national/employee number; annual rate overrides key on this
	Name       string
	Department string
	HireDate   generic.TimePoint
	Email      string
	Phone      string
}

// LeaveRecord is one leave interval taken by an employee.
type LeaveRecord struct {
	ID          generic.RecordID
	EmployeeID  generic.EntityID
	Type        LeaveType
	Start       generic.TimePoint
	End         generic.TimePoint
	DaysUsed    generic.Amount
	Reason      string
	Status      Status
	MedicalCert string // certificate object key, sick leave only
}

// Approved reports whether the record counts toward consumption.
func (r LeaveRecord) Approved() bool {
	return r.Status == StatusApproved
}

// Validate checks the record invariants: end ≥ start, days used ≥ 0.
func (r LeaveRecord) Validate() error {
	if r.End.Before(r.Start) {
		return &generic.ValidationError{Field: "end_date", Message: "end date before start date", Err: generic.ErrInvalidPeriod}
	}
	if r.DaysUsed.IsNegative() {
		return &generic.ValidationError{Field: "days_used", Message: "must not be negative", Err: generic.ErrInvalidAmount}
	}
	return nil
}

// SumApproved totals days used over approved records.
func SumApproved(records []LeaveRecord) generic.Amount {
	return sumWhere(records, func(LeaveRecord) bool { return true })
}

func sumWhere(records []LeaveRecord, keep func(LeaveRecord) bool) generic.Amount {
	total := generic.ZeroDays()
	for _, r := range records {
		if r.Approved() && keep(r) {
			total = total.Add(r.DaysUsed)
		}
	}
	return total
}

// =============================================================================
// RESULT
// =============================================================================

// BalanceResult is the transient (entitlement, balance) pair. Never stored.
type BalanceResult struct {
	Entitlement generic.Amount
	Balance     generic.Amount
}

// ZeroBalance is returned for unknown employees.
func ZeroBalance() BalanceResult {
	return BalanceResult{Entitlement: generic.ZeroDays(), Balance: generic.ZeroDays()}
}
