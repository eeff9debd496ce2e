package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/report"
	"github.com/warp/leave-manager/timeoff"
	"github.com/xuri/excelize/v2"
)

func sampleReport() report.Report {
	asOf := generic.NewTimePoint(2024, time.September, 1)
	hire := generic.NewTimePoint(2024, time.January, 1)
	emp := timeoff.Employee{ID: 1, Number: "8601310127086", Name: "Thandi", Department: "Finance", HireDate: hire}

	records := []timeoff.LeaveRecord{
		{Start: generic.NewTimePoint(2024, time.March, 1), DaysUsed: generic.Days(3), Status: timeoff.StatusApproved},
		{Start: generic.NewTimePoint(2024, time.August, 1), DaysUsed: generic.Days(2), Status: timeoff.StatusApproved},
	}
	svc := &timeoff.BalanceService{Annual: timeoff.OverrideAnnualPolicy(map[string]timeoff.Rate{
		"8601310127086": {Days: decimal.NewFromInt(20), Months: 12},
	}), Sick: timeoff.StandardSickPolicy()}

	return report.Build(asOf, []report.Entry{{Employee: emp, Balances: svc.Compute(emp, nil, records, asOf)}})
}

func TestBuild_RoundsFigures(t *testing.T) {
	r := sampleReport()
	require.Len(t, r.Rows, 1)

	row := r.Rows[0]
	assert.Equal(t, "Thandi", row.Name)
	assert.Equal(t, 13.33, row.AnnualEntitlement) // 8 months * 20/12
	assert.Equal(t, 30.0, row.SickEntitlement)
	assert.Equal(t, 25.0, row.SickBalance)
	assert.Equal(t, "first_cycle", row.SickPhase)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WritePDF(&buf, sampleReport()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteXLSX(t *testing.T) {
	// GIVEN: A one-row report
	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, sampleReport()))

	// WHEN: Reading the workbook back
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)

	// THEN: Header plus one data row
	require.Len(t, rows, 2)
	assert.Equal(t, "Employee ID", rows[0][0])
	assert.Equal(t, "8601310127086", rows[1][0])
	assert.Equal(t, "Thandi", rows[1][1])
	assert.Equal(t, "2024-01-01", rows[1][3])
	assert.Equal(t, "25", rows[1][7])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, report.Report{AsOf: generic.Today()}))
	assert.NotZero(t, buf.Len())
}
