/*
policies.go - Pre-built leave policy configurations

PURPOSE:
  Ready-to-use annual and sick policies matching the statutory defaults.
  Deployments that need different numbers load them from configuration
  through factory/policy.go instead of editing these.

AVAILABLE POLICIES:
  BaselineAnnualPolicy:  1.25 days/month, capped at 30 days
  OverrideAnnualPolicy:  1.25 days/month, uncapped, per-employee rate table
  StandardSickPolicy:    6 days in 180-day probation, then 30 days per 1095-day cycle

EXAMPLE:
  annual := timeoff.OverrideAnnualPolicy(map[string]timeoff.Rate{
      "8601310127086": {Days: decimal.NewFromInt(20), Months: 12},
  })
  res := annual.Balance("8601310127086", hire, today, used)

SEE ALSO:
  - accrual.go: AnnualPolicy
  - sick.go: SickPolicy
  - factory/policy.go: JSON/YAML-based policy creation
*/
package timeoff

import "github.com/warp/leave-manager/generic"

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultMonthlyRate          = 1.25
	DefaultAnnualCap            = 30
	DefaultProbationDays        = 180
	DefaultProbationEntitlement = 6
	DefaultCycleDays            = 1095
	DefaultCycleEntitlement     = 30
)

// =============================================================================
// ANNUAL
// =============================================================================

// BaselineAnnualPolicy returns the capped 1.25 days/month policy.
func BaselineAnnualPolicy() AnnualPolicy {
	limit := generic.NewAmountFromInt(DefaultAnnualCap, generic.UnitDays)
	return AnnualPolicy{
		DefaultRate: MonthlyRate(DefaultMonthlyRate),
		Cap:         &limit,
	}
}

// OverrideAnnualPolicy returns the uncapped policy with per-employee rates.
func OverrideAnnualPolicy(rates map[string]Rate) AnnualPolicy {
	return AnnualPolicy{
		DefaultRate: MonthlyRate(DefaultMonthlyRate),
		Rates:       rates,
	}
}

// =============================================================================
// SICK
// =============================================================================

// StandardSickPolicy returns the probation-then-cycles sick policy.
func StandardSickPolicy() SickPolicy {
	return SickPolicy{
		ProbationDays:        DefaultProbationDays,
		ProbationEntitlement: generic.NewAmountFromInt(DefaultProbationEntitlement, generic.UnitDays),
		CycleDays:            DefaultCycleDays,
		CycleEntitlement:     generic.NewAmountFromInt(DefaultCycleEntitlement, generic.UnitDays),
	}
}
