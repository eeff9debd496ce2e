package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/timeoff"
)

func TestScanLeaveRow_CorruptDaysUsed(t *testing.T) {
	// GIVEN: A sick-leave row whose days_used no longer parses
	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	emp := timeoff.Employee{Number: "E1", Name: "Amahle", HireDate: generic.NewTimePoint(2021, 1, 1)}
	require.NoError(t, store.CreateEmployee(ctx, &emp))
	_, err = store.db.ExecContext(ctx,
		`INSERT INTO sick_leave (employee_id, start_date, end_date, days_used, status, created_at)
		 VALUES (?, '2024-05-01', '2024-05-02', 'two', 'Approved', '2024-05-01T00:00:00Z')`, emp.ID)
	require.NoError(t, err)

	// WHEN: Reading it back, directly and through the balance service
	_, listErr := store.ListLeave(ctx, timeoff.LeaveSick, LeaveFilter{})
	svc := timeoff.NewBalanceService(store, timeoff.BaselineAnnualPolicy(), timeoff.StandardSickPolicy())
	_, balErr := svc.Balances(ctx, emp.ID)

	// THEN: Both fail as a server fault instead of counting zero days
	require.Error(t, listErr)
	assert.ErrorIs(t, listErr, ErrCorruptRow)
	assert.Contains(t, listErr.Error(), "days_used")
	assert.False(t, generic.IsClientError(listErr))
	assert.ErrorIs(t, balErr, ErrCorruptRow)
}

func TestScanEmployee_CorruptHireDate(t *testing.T) {
	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, err = store.db.ExecContext(ctx,
		`INSERT INTO employees (name, employee_id, hire_date, created_at) VALUES ('X', 'E1', '01/02/2021', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = store.ListEmployees(ctx)
	assert.ErrorIs(t, err, ErrCorruptRow)
	assert.False(t, generic.IsClientError(err))
}
