package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "") // ignore whatever the host environment has

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, "balanced", cfg.AgentProfile)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, 60*time.Second, cfg.TurnTimeout)
	assert.Equal(t, []Tier{{7, 10}, {14, 15}, {30, 20}}, cfg.PricingTiers)
	assert.Equal(t, DefaultHolidays, cfg.Holidays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9099")
	t.Setenv("PRICING_TIERS", "5:5,10:12")
	t.Setenv("HOLIDAYS", "01-01,12-25")
	t.Setenv("TOOL_TIMEOUT_MS", "2500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9099", cfg.Port)
	assert.Equal(t, []Tier{{5, 5}, {10, 12}}, cfg.PricingTiers)
	assert.Equal(t, []string{"01-01", "12-25"}, cfg.Holidays)
	assert.Equal(t, 2500*time.Millisecond, cfg.ToolTimeout)
}

func TestLoad_RejectsBadChunking(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsTopKAboveMax(t *testing.T) {
	t.Setenv("TOP_K", "20")
	t.Setenv("MAX_TOP_K", "10")

	_, err := Load()
	assert.Error(t, err)
}

func TestParsePricingTiers(t *testing.T) {
	tiers, err := ParsePricingTiers("7:10,14:15,30:20")
	require.NoError(t, err)
	assert.Equal(t, []Tier{{7, 10}, {14, 15}, {30, 20}}, tiers)
}

func TestParsePricingTiers_SortsInput(t *testing.T) {
	tiers, err := ParsePricingTiers("30:20, 7:10 ,14:15")
	require.NoError(t, err)
	assert.Equal(t, []Tier{{7, 10}, {14, 15}, {30, 20}}, tiers)
}

func TestParsePricingTiers_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"malformed pair", "7-10"},
		{"non-numeric", "a:b"},
		{"zero days", "0:10"},
		{"percent above 100", "7:150"},
		{"duplicate threshold", "7:10,7:12"},
		{"decreasing discount", "7:20,14:10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePricingTiers(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestParseHolidays(t *testing.T) {
	days, err := ParseHolidays("01-01, 09-15,12-25")
	require.NoError(t, err)
	assert.Equal(t, []string{"01-01", "09-15", "12-25"}, days)
}

func TestParseHolidays_Invalid(t *testing.T) {
	for _, in := range []string{"13-01", "01-32", "2026-01-01", "navidad"} {
		_, err := ParseHolidays(in)
		assert.Error(t, err, "input %q", in)
	}
}
