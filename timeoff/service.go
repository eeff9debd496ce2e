/*
service.go - Store-backed balance lookups

PURPOSE:
  Reads one consistent snapshot (employee + leave records) from a
  RecordStore and runs both accrual engines over it. The service holds no
  balances of its own; every call recomputes from the records.

UNKNOWN EMPLOYEES:
  A missing employee is not an error here: both results come back as
  (0, 0). Callers that need a 404 check existence themselves.

USAGE:
  svc := timeoff.NewBalanceService(store, annualPolicy, sickPolicy)
  b, err := svc.Balances(ctx, employeeID)
  fmt.Println(b.Annual.Balance, b.Sick.Balance)

SEE ALSO:
  - accrual.go, sick.go: the engines
  - store/sqlite/leave.go: the production RecordStore
*/
package timeoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warp/leave-manager/generic"
)

// RecordStore supplies employees and their leave records. It is never
// written to by the engine.
type RecordStore interface {
	GetEmployee(ctx context.Context, id generic.EntityID) (*Employee, error)
	LeaveForEmployee(ctx context.Context, employeeID generic.EntityID, leaveType LeaveType) ([]LeaveRecord, error)
}

// EmployeeBalances is both leave results for one employee at one date.
type EmployeeBalances struct {
	AsOf   generic.TimePoint
	Annual AnnualBalance
	Sick   SickBalance
}

// BalanceService computes balances from a RecordStore.
type BalanceService struct {
	Store  RecordStore
	Annual AnnualPolicy
	Sick   SickPolicy
	Now    func() time.Time
}

// NewBalanceService creates a service that evaluates balances at wall-clock today.
func NewBalanceService(store RecordStore, annual AnnualPolicy, sick SickPolicy) *BalanceService {
	return &BalanceService{Store: store, Annual: annual, Sick: sick, Now: time.Now}
}

// Today returns the evaluation date.
func (s *BalanceService) Today() generic.TimePoint {
	if s.Now == nil {
		return generic.Today()
	}
	return generic.FromTime(s.Now())
}

// Balances looks up the employee and computes both balances as of today.
func (s *BalanceService) Balances(ctx context.Context, id generic.EntityID) (EmployeeBalances, error) {
	return s.BalancesAt(ctx, id, s.Today())
}

// BalancesAt computes both balances as of the given date.
func (s *BalanceService) BalancesAt(ctx context.Context, id generic.EntityID, today generic.TimePoint) (EmployeeBalances, error) {
	emp, err := s.Store.GetEmployee(ctx, id)
	if errors.Is(err, generic.ErrEmployeeNotFound) {
		return s.unknown(today), nil
	}
	if err != nil {
		return EmployeeBalances{}, fmt.Errorf("load employee %d: %w", id, err)
	}

	annual, err := s.Store.LeaveForEmployee(ctx, id, LeaveAnnual)
	if err != nil {
		return EmployeeBalances{}, fmt.Errorf("load annual leave for %d: %w", id, err)
	}
	sick, err := s.Store.LeaveForEmployee(ctx, id, LeaveSick)
	if err != nil {
		return EmployeeBalances{}, fmt.Errorf("load sick leave for %d: %w", id, err)
	}

	return s.Compute(*emp, annual, sick, today), nil
}

// Compute runs both engines over records already in hand. List endpoints
// use it to avoid one store round-trip per employee.
func (s *BalanceService) Compute(emp Employee, annual, sick []LeaveRecord, today generic.TimePoint) EmployeeBalances {
	return EmployeeBalances{
		AsOf:   today,
		Annual: s.Annual.Balance(emp.Number, emp.HireDate, today, SumApproved(annual)),
		Sick:   s.Sick.Balance(emp.HireDate, today, sick),
	}
}

func (s *BalanceService) unknown(today generic.TimePoint) EmployeeBalances {
	zero := generic.ZeroDays()
	return EmployeeBalances{
		AsOf:   today,
		Annual: AnnualBalance{BalanceResult: ZeroBalance(), Used: zero},
		Sick:   SickBalance{BalanceResult: ZeroBalance(), Phase: PhaseNotStarted, ProbationUsed: zero, UsedInCycle: zero, Used: zero},
	}
}
