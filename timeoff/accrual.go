/*
accrual.go - Annual leave accrual

PURPOSE:
  Computes annual leave entitlement and balance from the hire date, the
  evaluation date and the total approved annual leave used. Pure function:
  no store access, no cached state.

RULE:
  months_employed = (T.year - H.year) * 12 + (T.month - H.month)
  entitlement     = months_employed * rate(employee)   (optionally capped)
  balance         = entitlement - used                 (may go negative)

  Day of month is ignored on purpose: an employee hired on Jan 31 and
  evaluated on Feb 1 is credited one full month.

RATE TABLE:
  Rates are looked up by employee number, falling back to DefaultRate.
  Overrides are configuration, never control flow:

    policy := AnnualPolicy{
        DefaultRate: MonthlyRate(1.25),
        Rates:       map[string]Rate{"8601310127086": {Days: decimal.NewFromInt(20), Months: 12}},
    }

VARIANTS:
  Baseline: 1.25/month capped at 30 days (BaselineAnnualPolicy)
  Override: 1.25/month uncapped with per-employee rates (OverrideAnnualPolicy)

FUTURE HIRE DATES:
  months_employed clamps at zero, so entitlement is zero and the balance is
  just the negated usage.

SEE ALSO:
  - sick.go: Sick leave three-phase policy
  - policies.go: Preset policies
  - service.go: Store-backed balance lookups
*/
package timeoff

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-manager/generic"
)

// AnnualPolicy configures annual leave accrual.
type AnnualPolicy struct {
	DefaultRate Rate
	Rates       map[string]Rate // employee number → rate
	Cap         *generic.Amount // nil = uncapped
}

// RateFor returns the override for the employee number, or DefaultRate.
func (p AnnualPolicy) RateFor(employeeNumber string) Rate {
	if r, ok := p.Rates[employeeNumber]; ok {
		return r
	}
	return p.DefaultRate
}

// AnnualBalance is the annual result plus the figures behind it.
type AnnualBalance struct {
	BalanceResult
	MonthsEmployed int
	Rate           Rate
	Used           generic.Amount
	Capped         bool
}

// MonthsEmployed is the calendar-month difference, clamped at zero.
func MonthsEmployed(hire, today generic.TimePoint) int {
	months := generic.CalendarMonthsBetween(hire, today)
	if months < 0 {
		return 0
	}
	return months
}

// Balance computes annual entitlement and balance.
func (p AnnualPolicy) Balance(employeeNumber string, hire, today generic.TimePoint, used generic.Amount) AnnualBalance {
	months := MonthsEmployed(hire, today)
	rate := p.RateFor(employeeNumber)

	entitlement := generic.NewAmountFromDecimal(rate.Accrue(months), generic.UnitDays)
	capped := false
	if p.Cap != nil && entitlement.GreaterThan(*p.Cap) {
		entitlement = *p.Cap
		capped = true
	}

	return AnnualBalance{
		BalanceResult: BalanceResult{
			Entitlement: entitlement,
			Balance:     entitlement.Sub(used),
		},
		MonthsEmployed: months,
		Rate:           rate,
		Used:           used,
		Capped:         capped,
	}
}

// AnnualLeaveBalance is the functional entry point over an explicit policy.
func AnnualLeaveBalance(employeeNumber string, hire, today generic.TimePoint, approvedDaysUsed generic.Amount, policy AnnualPolicy) BalanceResult {
	return policy.Balance(employeeNumber, hire, today, approvedDaysUsed).BalanceResult
}

// Helper
var monthsPerYear = decimal.NewFromInt(12)

// AnnualEquivalent expresses a rate as days per year, for display.
func (r Rate) AnnualEquivalent() decimal.Decimal {
	return r.PerMonth().Mul(monthsPerYear)
}
