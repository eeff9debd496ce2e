/*
Package report renders employee leave balances as downloadable files.

PURPOSE:
  One row per employee with annual and sick entitlement and balance as of
  a given date. The figures come from timeoff.BalanceService; this package
  only lays them out.

FORMATS:
  PDF:  landscape A4 table (gofpdf)
  XLSX: single "Balances" sheet with a bold header row (excelize)

SEE ALSO:
  - api/handlers.go: /api/reports/balances.pdf, /api/reports/balances.xlsx
*/
package report

import (
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/timeoff"
)

// Row is one employee's line in a report. Figures are rounded to 2 places.
type Row struct {
	Number            string
	Name              string
	Department        string
	HireDate          generic.TimePoint
	AnnualEntitlement float64
	AnnualBalance     float64
	SickEntitlement   float64
	SickBalance       float64
	SickPhase         string
}

// Report is a balance report as of one date.
type Report struct {
	AsOf generic.TimePoint
	Rows []Row
}

// Entry pairs an employee with its computed balances.
type Entry struct {
	Employee timeoff.Employee
	Balances timeoff.EmployeeBalances
}

// Build turns computed balances into report rows, keeping input order.
func Build(asOf generic.TimePoint, entries []Entry) Report {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			Number:            e.Employee.Number,
			Name:              e.Employee.Name,
			Department:        e.Employee.Department,
			HireDate:          e.Employee.HireDate,
			AnnualEntitlement: e.Balances.Annual.Entitlement.Rounded(2),
			AnnualBalance:     e.Balances.Annual.Balance.Rounded(2),
			SickEntitlement:   e.Balances.Sick.Entitlement.Rounded(2),
			SickBalance:       e.Balances.Sick.Balance.Rounded(2),
			SickPhase:         string(e.Balances.Sick.Phase),
		})
	}
	return Report{AsOf: asOf, Rows: rows}
}

var headers = []string{
	"Employee ID", "Name", "Department", "Hire Date",
	"Annual Entitlement", "Annual Balance", "Sick Entitlement", "Sick Balance", "Sick Phase",
}

func (r Row) cells() []interface{} {
	return []interface{}{
		r.Number, r.Name, r.Department, r.HireDate.String(),
		r.AnnualEntitlement, r.AnnualBalance, r.SickEntitlement, r.SickBalance, r.SickPhase,
	}
}
