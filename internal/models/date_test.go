package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCivilDate(t *testing.T) {
	d, err := ParseCivilDate("2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", d.String())
	assert.Equal(t, time.Tuesday, d.Weekday())
	assert.Equal(t, "09-15", d.MonthDay())
}

func TestParseCivilDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "15/09/2026", "2026-13-01", "mañana"} {
		_, err := ParseCivilDate(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestNewCivilDate_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	d := NewCivilDate(time.Date(2026, 9, 15, 23, 45, 12, 0, loc))
	assert.Equal(t, "2026-09-15", d.String())
	assert.True(t, d.Time().Equal(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)))
}

func TestCivilDate_AddDays(t *testing.T) {
	d, _ := ParseCivilDate("2026-08-30")
	assert.Equal(t, "2026-09-01", d.AddDays(2).String())
	assert.Equal(t, "2026-08-30", d.AddDays(0).String())
	assert.Equal(t, "2026-08-29", d.AddDays(-1).String())
}

func TestCivilDate_Comparisons(t *testing.T) {
	a, _ := ParseCivilDate("2026-09-01")
	b, _ := ParseCivilDate("2026-09-02")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
}

func TestCivilDate_JSON(t *testing.T) {
	d, _ := ParseCivilDate("2026-12-25")

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-12-25"`, string(raw))

	var back CivilDate
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Equal(d))
}

func TestCivilDate_JSONEmpty(t *testing.T) {
	var d CivilDate
	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}
