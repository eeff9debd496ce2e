/*
sick.go - Sick leave three-phase accrual

PURPOSE:
  Computes sick leave entitlement and balance. The policy has a probation
  phase followed by repeating fixed-length cycles; cycle boundaries are a
  pure function of (hire date, today), recomputed on every call, so
  correcting a past record's date lands it in the right cycle with no
  migration.

PHASES (D = days since hire):
  Phase A - Probation, D < 180:
    entitlement = 6
    used        = every approved sick record
    balance     = max(0, 6 - used)

  Phase B - First cycle, complete_cycles == 0:
    complete_cycles = floor((D - 180) / 1095)
    cycle_start     = hire + 180 + complete_cycles * 1095
    entitlement     = 30
    balance         = max(0, 30 - (probation_used + used_in_cycle))
    Usage during probation is carried forward as a debit. Unused probation
    days lapse.

  Phase C - Later cycles, complete_cycles >= 1:
    entitlement = 30
    balance     = max(0, 30 - used_in_cycle)
    Prior cycles are fully reset.

  used_in_cycle counts approved records with start >= cycle_start.
  probation_used counts approved records with start < hire + 180.

BALANCE FLOOR:
  Sick balance never goes below zero, unlike annual leave.

FUTURE HIRE DATES:
  Entitlement and balance are both zero.

SEE ALSO:
  - accrual.go: Annual leave
  - generic/period.go: Window, the fixed-length cycle helper
*/
package timeoff

import (
	"github.com/warp/leave-manager/generic"
)

// Phase names where the employee sits in the sick-leave policy.
type Phase string

const (
	PhaseNotStarted Phase = "not_started" // hire date in the future
	PhaseProbation  Phase = "probation"   // A
	PhaseFirstCycle Phase = "first_cycle" // B
	PhaseCycle      Phase = "cycle"       // C
)

// SickPolicy configures the sick-leave phases.
type SickPolicy struct {
	ProbationDays        int
	ProbationEntitlement generic.Amount
	CycleDays            int
	CycleEntitlement     generic.Amount
}

// SickBalance is the sick result plus the figures behind it.
type SickBalance struct {
	BalanceResult
	Phase          Phase
	DaysEmployed   int
	CompleteCycles int
	Cycle          generic.Period // zero during probation
	ProbationUsed  generic.Amount
	UsedInCycle    generic.Amount
	Used           generic.Amount // amount the balance was reduced by
}

// ProbationEnd is the first day after probation.
func (p SickPolicy) ProbationEnd(hire generic.TimePoint) generic.TimePoint {
	return hire.AddDays(p.ProbationDays)
}

func (p SickPolicy) cycles(hire generic.TimePoint) generic.Window {
	return generic.Window{Anchor: p.ProbationEnd(hire), Length: p.CycleDays}
}

// CycleStart returns the start of the cycle containing today. ok is false
// during probation or before hire.
func (p SickPolicy) CycleStart(hire, today generic.TimePoint) (generic.TimePoint, bool) {
	cycle, _, ok := p.cycles(hire).PeriodFor(today)
	return cycle.Start, ok
}

// Balance computes sick entitlement and balance. Non-approved records are ignored.
func (p SickPolicy) Balance(hire, today generic.TimePoint, records []LeaveRecord) SickBalance {
	days := generic.DaysBetween(hire, today)
	zero := generic.ZeroDays()

	if days < 0 {
		return SickBalance{
			BalanceResult: ZeroBalance(),
			Phase:         PhaseNotStarted,
			ProbationUsed: zero,
			UsedInCycle:   zero,
			Used:          zero,
		}
	}

	if days < p.ProbationDays {
		used := SumApproved(records)
		return SickBalance{
			BalanceResult: BalanceResult{
				Entitlement: p.ProbationEntitlement,
				Balance:     p.ProbationEntitlement.Sub(used).ClampZero(),
			},
			Phase:         PhaseProbation,
			DaysEmployed:  days,
			ProbationUsed: used,
			UsedInCycle:   zero,
			Used:          used,
		}
	}

	probationEnd := p.ProbationEnd(hire)
	cycle, n, _ := p.cycles(hire).PeriodFor(today)

	usedInCycle := sumWhere(records, func(r LeaveRecord) bool {
		return r.Start.AfterOrEqual(cycle.Start)
	})
	probationUsed := sumWhere(records, func(r LeaveRecord) bool {
		return r.Start.Before(probationEnd)
	})

	phase := PhaseCycle
	used := usedInCycle
	if n == 0 {
		phase = PhaseFirstCycle
		used = probationUsed.Add(usedInCycle)
	}

	return SickBalance{
		BalanceResult: BalanceResult{
			Entitlement: p.CycleEntitlement,
			Balance:     p.CycleEntitlement.Sub(used).ClampZero(),
		},
		Phase:          phase,
		DaysEmployed:   days,
		CompleteCycles: n,
		Cycle:          cycle,
		ProbationUsed:  probationUsed,
		UsedInCycle:    usedInCycle,
		Used:           used,
	}
}

// SickLeaveBalance is the functional entry point under the standard policy.
func SickLeaveBalance(hire, today generic.TimePoint, approvedRecords []LeaveRecord) BalanceResult {
	return StandardSickPolicy().Balance(hire, today, approvedRecords).BalanceResult
}
