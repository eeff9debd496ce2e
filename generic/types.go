/*
Package generic provides the domain-agnostic primitives of the leave engine.

PURPOSE:
  Quantities, calendar dates, periods and errors shared by every other
  package. Nothing here knows what "annual" or "sick" leave means; the
  timeoff package builds the accrual rules on top of these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 1.5 days)
  - EntityID: Type-safe employee row identifier

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so half-days and 20/12 rates do not drift
  2. Type Safety: Strong typing for IDs prevents mixing row IDs and numbers
  3. Derived, never stored: balances are recomputed from records every time

USAGE:
  used := generic.NewAmount(0.5, generic.UnitDays)
  total := used.Add(generic.NewAmountFromInt(2, generic.UnitDays))

SEE ALSO:
  - time.go: TimePoint and calendar arithmetic
  - period.go: Period and cycle windows
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (always days for leave)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays Unit = "days"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

// Days is shorthand for an amount in days.
func Days(value float64) Amount { return NewAmount(value, UnitDays) }

// ZeroDays is the zero amount in days.
func ZeroDays() Amount { return Amount{Value: decimal.Zero, Unit: UnitDays} }

// ParseAmount parses a decimal string such as "1.5".
func ParseAmount(s string, unit Unit) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, &ParseError{Field: "amount", Value: s, Err: ErrInvalidAmount}
	}
	return Amount{Value: d, Unit: unit}, nil
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }

// ClampZero returns the amount, or zero if it is negative.
func (a Amount) ClampZero() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

// Rounded returns the value rounded half away from zero to the given places,
// as a float for display.
func (a Amount) Rounded(places int32) float64 {
	return a.Value.Round(places).InexactFloat64()
}

func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Unit)
}

// Sum adds up amounts, returning zero days for an empty slice.
func Sum(amounts ...Amount) Amount {
	total := ZeroDays()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EntityID is the store's row identifier for an employee.
type EntityID int64

// RecordID is the store's row identifier for a leave record.
type RecordID int64
