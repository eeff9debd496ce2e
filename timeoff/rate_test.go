package timeoff_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-manager/timeoff"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		in        string
		perMonth  string
		twelveMos string
	}{
		{"1.25", "1.25", "15"},
		{"20/12", "1.6666666666666667", "20"},
		{" 2 ", "2", "24"},
		{"0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := timeoff.ParseRate(tt.in)
			require.NoError(t, err)
			assert.True(t, r.PerMonth().Equal(decimal.RequireFromString(tt.perMonth)), "per month: %s", r.PerMonth())
			assert.True(t, r.Accrue(12).Equal(decimal.RequireFromString(tt.twelveMos)), "twelve months: %s", r.Accrue(12))
		})
	}
}

func TestParseRate_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "1/0", "1/-3", "1/x", "-20/12"} {
		_, err := timeoff.ParseRate(in)
		assert.Error(t, err, in)
	}
}

func TestRate_AccrueNonPositiveMonths(t *testing.T) {
	r := timeoff.MonthlyRate(1.25)
	assert.True(t, r.Accrue(0).IsZero())
	assert.True(t, r.Accrue(-3).IsZero())
}
