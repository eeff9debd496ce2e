package timeoff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Rate is an accrual rate of Days per Months. Keeping the fraction
// unreduced means 20/12 over 12 months yields exactly 20.
type Rate struct {
	Days   decimal.Decimal
	Months int64
}

// MonthlyRate is Days per one month.
func MonthlyRate(days float64) Rate {
	return Rate{Days: decimal.NewFromFloat(days), Months: 1}
}

// Accrue returns the entitlement for the given number of months.
func (r Rate) Accrue(months int) decimal.Decimal {
	if months <= 0 || r.Months <= 0 {
		return decimal.Zero
	}
	return r.Days.Mul(decimal.NewFromInt(int64(months))).Div(decimal.NewFromInt(r.Months))
}

// PerMonth is the rate expressed as days per month.
func (r Rate) PerMonth() decimal.Decimal {
	return r.Accrue(1)
}

func (r Rate) IsZero() bool { return r.Days.IsZero() }

func (r Rate) String() string {
	if r.Months == 1 {
		return r.Days.String()
	}
	return r.Days.String() + "/" + strconv.FormatInt(r.Months, 10)
}

// ParseRate accepts "1.25" (days per month) or "20/12" (days per months).
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	days, months, isFraction := strings.Cut(s, "/")

	d, err := decimal.NewFromString(strings.TrimSpace(days))
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	if d.IsNegative() {
		return Rate{}, fmt.Errorf("invalid rate %q: negative", s)
	}
	if !isFraction {
		return Rate{Days: d, Months: 1}, nil
	}

	m, err := strconv.ParseInt(strings.TrimSpace(months), 10, 64)
	if err != nil || m <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: denominator must be a positive integer", s)
	}
	return Rate{Days: d, Months: m}, nil
}
