package timeoff_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/timeoff"
)

type fakeRecords struct {
	employees map[generic.EntityID]timeoff.Employee
	leave     []timeoff.LeaveRecord
	err       error
}

func (f *fakeRecords) GetEmployee(_ context.Context, id generic.EntityID) (*timeoff.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	emp, ok := f.employees[id]
	if !ok {
		return nil, generic.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (f *fakeRecords) LeaveForEmployee(_ context.Context, id generic.EntityID, lt timeoff.LeaveType) ([]timeoff.LeaveRecord, error) {
	var out []timeoff.LeaveRecord
	for _, r := range f.leave {
		if r.EmployeeID == id && r.Type == lt {
			out = append(out, r)
		}
	}
	return out, nil
}

func fixedNow(tp generic.TimePoint) func() time.Time {
	return func() time.Time { return tp.Time.Add(15 * time.Hour) }
}

func TestBalanceService_Balances(t *testing.T) {
	// GIVEN: One employee with annual and sick usage
	annual := timeoff.LeaveRecord{EmployeeID: 1, Type: timeoff.LeaveAnnual, Start: date(2024, 2, 1), End: date(2024, 2, 2), DaysUsed: days(2), Status: timeoff.StatusApproved}
	pending := annual
	pending.DaysUsed = days(5)
	pending.Status = timeoff.StatusPending

	store := &fakeRecords{
		employees: map[generic.EntityID]timeoff.Employee{
			1: {ID: 1, Number: overrideNumber, Name: "Thandi", HireDate: date(2024, 1, 1)},
		},
		leave: []timeoff.LeaveRecord{
			annual,
			pending,
			{EmployeeID: 1, Type: timeoff.LeaveSick, Start: date(2024, 3, 1), End: date(2024, 3, 3), DaysUsed: days(3), Status: timeoff.StatusApproved},
			{EmployeeID: 1, Type: timeoff.LeaveSick, Start: date(2024, 8, 1), End: date(2024, 8, 2), DaysUsed: days(2), Status: timeoff.StatusApproved},
		},
	}
	svc := timeoff.NewBalanceService(store, overridePolicy(), timeoff.StandardSickPolicy())
	svc.Now = fixedNow(date(2025, 1, 1))

	// WHEN: Computing balances
	b, err := svc.Balances(context.Background(), 1)
	require.NoError(t, err)

	// THEN: Annual uses the override rate, sick carries probation usage
	assert.Equal(t, date(2025, 1, 1), b.AsOf)
	assertDays(t, 20, b.Annual.Entitlement)
	assertDays(t, 18, b.Annual.Balance)
	assertDays(t, 2, b.Annual.Used)
	assert.Equal(t, timeoff.PhaseFirstCycle, b.Sick.Phase)
	assertDays(t, 25, b.Sick.Balance)
}

func TestBalanceService_UnknownEmployee_Zero(t *testing.T) {
	svc := timeoff.NewBalanceService(&fakeRecords{}, timeoff.BaselineAnnualPolicy(), timeoff.StandardSickPolicy())

	b, err := svc.Balances(context.Background(), 42)
	require.NoError(t, err)
	assertDays(t, 0, b.Annual.Entitlement)
	assertDays(t, 0, b.Annual.Balance)
	assertDays(t, 0, b.Sick.Entitlement)
	assertDays(t, 0, b.Sick.Balance)
}

func TestBalanceService_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := timeoff.NewBalanceService(&fakeRecords{err: boom}, timeoff.BaselineAnnualPolicy(), timeoff.StandardSickPolicy())

	_, err := svc.Balances(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestBalanceService_BalancesAt(t *testing.T) {
	store := &fakeRecords{employees: map[generic.EntityID]timeoff.Employee{
		7: {ID: 7, Number: "E7", HireDate: date(2023, 1, 1)},
	}}
	svc := timeoff.NewBalanceService(store, timeoff.BaselineAnnualPolicy(), timeoff.StandardSickPolicy())

	b, err := svc.BalancesAt(context.Background(), 7, date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 12, b.Annual.MonthsEmployed)
	assertDays(t, 15, b.Annual.Balance)
}
