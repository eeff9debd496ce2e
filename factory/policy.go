/*
Package factory converts leave policy documents into engine policies.

PURPOSE:
  Turns JSON (or config-file) policy definitions into timeoff.AnnualPolicy
  and timeoff.SickPolicy values. New per-employee rate overrides or a
  different cap are a config change, never a code change.

JSON SCHEMA:
  {
    "annual": {
      "default_rate": "1.25",
      "cap": 30,
      "rates": [{"employee_id": "8601310127086", "rate": "20/12"}]
    },
    "sick": {
      "probation_days": 180,
      "probation_entitlement": 6,
      "cycle_days": 1095,
      "cycle_entitlement": 30
    }
  }

  Rates are strings so fractions like "20/12" survive exactly. Overrides
  are a list rather than a map because config loaders case-fold map keys
  and employee numbers are case-sensitive. Omitting
  "cap" gives the uncapped variant. Omitted sick fields take the standard
  values.

USAGE:
  f := factory.NewPolicyFactory()
  annual, sick, err := f.ParsePolicies(jsonString)

  // From config (viper decodes into the same structs)
  annual, err := f.AnnualFromJSON(cfg.Leave.Annual)

SEE ALSO:
  - timeoff/policies.go: Go-based policy presets
  - config/config.go: leave.* configuration keys
*/
package factory

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/timeoff"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// LeavePolicyJSON is the JSON representation of both leave policies.
type LeavePolicyJSON struct {
	Annual AnnualPolicyJSON `json:"annual" mapstructure:"annual"`
	Sick   SickPolicyJSON   `json:"sick" mapstructure:"sick"`
}

// AnnualPolicyJSON represents annual accrual configuration.
type AnnualPolicyJSON struct {
	DefaultRate string             `json:"default_rate,omitempty" mapstructure:"default_rate"`
	Cap         *float64           `json:"cap,omitempty" mapstructure:"cap"`
	Rates       []RateOverrideJSON `json:"rates,omitempty" mapstructure:"rates"`
}

// RateOverrideJSON gives one employee number its own accrual rate.
type RateOverrideJSON struct {
	EmployeeID string `json:"employee_id" mapstructure:"employee_id"`
	Rate       string `json:"rate" mapstructure:"rate"`
}

// SickPolicyJSON represents sick-leave phase configuration.
type SickPolicyJSON struct {
	ProbationDays        int     `json:"probation_days,omitempty" mapstructure:"probation_days"`
	ProbationEntitlement float64 `json:"probation_entitlement,omitempty" mapstructure:"probation_entitlement"`
	CycleDays            int     `json:"cycle_days,omitempty" mapstructure:"cycle_days"`
	CycleEntitlement     float64 `json:"cycle_entitlement,omitempty" mapstructure:"cycle_entitlement"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to engine policies.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicies parses a JSON document holding both policies.
func (f *PolicyFactory) ParsePolicies(jsonStr string) (timeoff.AnnualPolicy, timeoff.SickPolicy, error) {
	var pj LeavePolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return timeoff.AnnualPolicy{}, timeoff.SickPolicy{}, fmt.Errorf("invalid policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts a parsed document into both policies.
func (f *PolicyFactory) FromJSON(pj LeavePolicyJSON) (timeoff.AnnualPolicy, timeoff.SickPolicy, error) {
	annual, err := f.AnnualFromJSON(pj.Annual)
	if err != nil {
		return timeoff.AnnualPolicy{}, timeoff.SickPolicy{}, err
	}
	sick, err := f.SickFromJSON(pj.Sick)
	if err != nil {
		return timeoff.AnnualPolicy{}, timeoff.SickPolicy{}, err
	}
	return annual, sick, nil
}

// AnnualFromJSON builds an AnnualPolicy. An empty default_rate means 1.25.
func (f *PolicyFactory) AnnualFromJSON(aj AnnualPolicyJSON) (timeoff.AnnualPolicy, error) {
	policy := timeoff.AnnualPolicy{DefaultRate: timeoff.MonthlyRate(timeoff.DefaultMonthlyRate)}

	if aj.DefaultRate != "" {
		r, err := timeoff.ParseRate(aj.DefaultRate)
		if err != nil {
			return timeoff.AnnualPolicy{}, fmt.Errorf("annual.default_rate: %w", err)
		}
		policy.DefaultRate = r
	}

	if aj.Cap != nil {
		if *aj.Cap < 0 {
			return timeoff.AnnualPolicy{}, fmt.Errorf("annual.cap: must not be negative, got %v", *aj.Cap)
		}
		limit := generic.NewAmount(*aj.Cap, generic.UnitDays)
		policy.Cap = &limit
	}

	if len(aj.Rates) > 0 {
		policy.Rates = make(map[string]timeoff.Rate, len(aj.Rates))
		for i, o := range aj.Rates {
			number := strings.TrimSpace(o.EmployeeID)
			if number == "" {
				return timeoff.AnnualPolicy{}, fmt.Errorf("annual.rates[%d]: employee_id is required", i)
			}
			if _, dup := policy.Rates[number]; dup {
				return timeoff.AnnualPolicy{}, fmt.Errorf("annual.rates[%d]: duplicate employee_id %q", i, number)
			}
			r, err := timeoff.ParseRate(o.Rate)
			if err != nil {
				return timeoff.AnnualPolicy{}, fmt.Errorf("annual.rates[%d] (%s): %w", i, number, err)
			}
			policy.Rates[number] = r
		}
	}

	return policy, nil
}

// SickFromJSON builds a SickPolicy, filling omitted fields with the standard values.
func (f *PolicyFactory) SickFromJSON(sj SickPolicyJSON) (timeoff.SickPolicy, error) {
	policy := timeoff.StandardSickPolicy()

	if sj.ProbationDays < 0 || sj.CycleDays < 0 || sj.ProbationEntitlement < 0 || sj.CycleEntitlement < 0 {
		return timeoff.SickPolicy{}, fmt.Errorf("sick: values must not be negative")
	}
	if sj.ProbationDays > 0 {
		policy.ProbationDays = sj.ProbationDays
	}
	if sj.ProbationEntitlement > 0 {
		policy.ProbationEntitlement = generic.NewAmount(sj.ProbationEntitlement, generic.UnitDays)
	}
	if sj.CycleDays > 0 {
		policy.CycleDays = sj.CycleDays
	}
	if sj.CycleEntitlement > 0 {
		policy.CycleEntitlement = generic.NewAmount(sj.CycleEntitlement, generic.UnitDays)
	}

	return policy, nil
}

// =============================================================================
// REVERSE CONVERSION
// =============================================================================

// ToJSON converts policies back to their document form.
func (f *PolicyFactory) ToJSON(annual timeoff.AnnualPolicy, sick timeoff.SickPolicy) LeavePolicyJSON {
	aj := AnnualPolicyJSON{DefaultRate: annual.DefaultRate.String()}
	if annual.Cap != nil {
		c := annual.Cap.Value.InexactFloat64()
		aj.Cap = &c
	}
	if len(annual.Rates) > 0 {
		numbers := make([]string, 0, len(annual.Rates))
		for number := range annual.Rates {
			numbers = append(numbers, number)
		}
		sort.Strings(numbers)
		for _, number := range numbers {
			aj.Rates = append(aj.Rates, RateOverrideJSON{EmployeeID: number, Rate: annual.Rates[number].String()})
		}
	}

	return LeavePolicyJSON{
		Annual: aj,
		Sick: SickPolicyJSON{
			ProbationDays:        sick.ProbationDays,
			ProbationEntitlement: sick.ProbationEntitlement.Value.InexactFloat64(),
			CycleDays:            sick.CycleDays,
			CycleEntitlement:     sick.CycleEntitlement.Value.InexactFloat64(),
		},
	}
}

// Describe summarises an annual policy for logs.
func Describe(p timeoff.AnnualPolicy) string {
	limit := "uncapped"
	if p.Cap != nil {
		limit = "cap " + p.Cap.Value.String()
	}
	return fmt.Sprintf("default %s/month, %s, %d override(s), %s/year", p.DefaultRate, limit, len(p.Rates), p.DefaultRate.AnnualEquivalent().Round(2))
}
