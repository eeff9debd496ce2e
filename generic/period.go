package generic

// =============================================================================
// PERIOD - Closed date range
// =============================================================================

// Period is the closed range [Start, End].
//
// Examples:
//   - Probation: hire date → hire date + 179 days
//   - Sick-leave cycle: cycle start → cycle start + 1094 days
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Days returns the number of calendar days in the period, inclusive.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End) + 1
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// FIXED-LENGTH WINDOWS - Repeating periods anchored on a date
// =============================================================================

// Window describes back-to-back periods of Length days starting at Anchor.
// A non-positive Length is one window that never closes.
type Window struct {
	Anchor TimePoint
	Length int
}

// Index returns how many complete windows lie between Anchor and date.
// Dates before Anchor return -1.
func (w Window) Index(date TimePoint) int {
	elapsed := DaysBetween(w.Anchor, date)
	if elapsed < 0 {
		return -1
	}
	if w.Length <= 0 {
		return 0
	}
	return elapsed / w.Length
}

// Nth returns the n-th window (0-based). An open window ends at Anchor.
func (w Window) Nth(n int) Period {
	if w.Length <= 0 {
		return Period{Start: w.Anchor, End: w.Anchor}
	}
	start := w.Anchor.AddDays(n * w.Length)
	return Period{Start: start, End: start.AddDays(w.Length - 1)}
}

// PeriodFor returns the window containing date. ok is false before Anchor.
func (w Window) PeriodFor(date TimePoint) (p Period, n int, ok bool) {
	n = w.Index(date)
	if n < 0 {
		return Period{}, n, false
	}
	p = w.Nth(n)
	if w.Length <= 0 {
		p.End = date
	}
	return p, n, true
}
