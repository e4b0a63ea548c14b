package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		code       PlanCode
		wantAccess AccessKind
	}{
		{PlanHalfDayMorning, AccessDayOnly},
		{PlanHalfDayNight, AccessFull},
		{PlanFullDay, AccessFull},
		{PlanWeeklyDay, AccessDayOnly},
		{PlanWeeklyFull, AccessFull},
		{PlanBiweeklyDay, AccessDayOnly},
		{PlanBiweeklyFull, AccessFull},
		{PlanMonthlyDay, AccessDayOnly},
		{PlanMonthlyFull, AccessFull},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			plan, err := Lookup(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.code, plan.Code)
			assert.Equal(t, tt.wantAccess, plan.Access)
		})
	}
}

func TestLookup_UnknownCode(t *testing.T) {
	_, err := Lookup(PlanCode("annual-vip"))
	assert.ErrorIs(t, err, ErrUnknownPlanCode)

	_, err = Lookup(PlanCode(""))
	assert.ErrorIs(t, err, ErrUnknownPlanCode)
}

func TestCodes_CoversCatalog(t *testing.T) {
	codes := Codes()
	require.Len(t, codes, 9)

	for _, code := range codes {
		_, err := Lookup(code)
		assert.NoError(t, err, "code %s", code)
	}
}

func TestParseClockTime(t *testing.T) {
	ct, err := ParseClockTime("18:00")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 18}, ct)

	ct, err = ParseClockTime("06:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 6, Minute: 30}, ct)

	_, err = ParseClockTime("25:99")
	assert.Error(t, err)
}
