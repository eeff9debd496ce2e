package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-manager/factory"
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/timeoff"
)

func TestParsePolicies_OverrideVariant(t *testing.T) {
	// GIVEN: Uncapped annual policy with one per-employee rate
	doc := `{
		"annual": {"default_rate": "1.25", "rates": [{"employee_id": "8601310127086", "rate": "20/12"}]},
		"sick": {}
	}`

	// WHEN: Parsing
	annual, sick, err := factory.NewPolicyFactory().ParsePolicies(doc)
	require.NoError(t, err)

	// THEN: Override yields exactly 20 days after 12 months; sick takes defaults
	assert.Nil(t, annual.Cap)
	hire := generic.NewTimePoint(2023, time.January, 1)
	today := generic.NewTimePoint(2024, time.January, 1)
	res := annual.Balance("8601310127086", hire, today, generic.ZeroDays())
	assert.True(t, res.Entitlement.Equal(generic.Days(20)), "got %s", res.Entitlement)

	assert.Equal(t, timeoff.StandardSickPolicy(), sick)
}

func TestParsePolicies_BaselineVariant(t *testing.T) {
	doc := `{"annual": {"cap": 30}}`

	annual, _, err := factory.NewPolicyFactory().ParsePolicies(doc)
	require.NoError(t, err)

	require.NotNil(t, annual.Cap)
	assert.True(t, annual.Cap.Equal(generic.Days(30)))
	assert.Equal(t, "1.25", annual.DefaultRate.String())
}

func TestParsePolicies_CustomSick(t *testing.T) {
	doc := `{"sick": {"probation_days": 90, "probation_entitlement": 3, "cycle_days": 365, "cycle_entitlement": 10}}`

	_, sick, err := factory.NewPolicyFactory().ParsePolicies(doc)
	require.NoError(t, err)

	assert.Equal(t, 90, sick.ProbationDays)
	assert.Equal(t, 365, sick.CycleDays)
	assert.True(t, sick.ProbationEntitlement.Equal(generic.Days(3)))
	assert.True(t, sick.CycleEntitlement.Equal(generic.Days(10)))
}

func TestParsePolicies_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed json", `{"annual": `},
		{"bad default rate", `{"annual": {"default_rate": "lots"}}`},
		{"bad override", `{"annual": {"rates": [{"employee_id": "E1", "rate": "20/0"}]}}`},
		{"override without employee", `{"annual": {"rates": [{"rate": "20/12"}]}}`},
		{"duplicate override", `{"annual": {"rates": [{"employee_id": "E1", "rate": "1.5"}, {"employee_id": "E1", "rate": "2"}]}}`},
		{"negative cap", `{"annual": {"cap": -1}}`},
		{"negative sick", `{"sick": {"cycle_days": -5}}`},
	}

	f := factory.NewPolicyFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.ParsePolicies(tt.doc)
			assert.Error(t, err)
		})
	}
}

func TestParsePolicies_OverrideKeepsCase(t *testing.T) {
	annual, _, err := factory.NewPolicyFactory().ParsePolicies(`{"annual": {"rates": [{"employee_id": "EMP-A1", "rate": "20/12"}]}}`)
	require.NoError(t, err)

	assert.Equal(t, "20/12", annual.RateFor("EMP-A1").String())
	assert.Equal(t, "1.25", annual.RateFor("emp-a1").String())
}

func TestToJSON_RoundTripsRates(t *testing.T) {
	f := factory.NewPolicyFactory()
	annual, sick, err := f.ParsePolicies(`{"annual": {"cap": 30, "rates": [
		{"employee_id": "8601310127086", "rate": "20/12"},
		{"employee_id": "E2", "rate": "1.5"}
	]}}`)
	require.NoError(t, err)

	pj := f.ToJSON(annual, sick)
	assert.Equal(t, "1.25", pj.Annual.DefaultRate)
	assert.Equal(t, []factory.RateOverrideJSON{
		{EmployeeID: "8601310127086", Rate: "20/12"},
		{EmployeeID: "E2", Rate: "1.5"},
	}, pj.Annual.Rates)
	require.NotNil(t, pj.Annual.Cap)
	assert.Equal(t, 30.0, *pj.Annual.Cap)
	assert.Equal(t, 1095, pj.Sick.CycleDays)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "default 1.25/month, cap 30, 0 override(s), 15/year", factory.Describe(timeoff.BaselineAnnualPolicy()))
}
