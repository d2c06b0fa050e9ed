package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concesa/salesagent/config"
	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/utils"
)

func mustDate(t *testing.T, s string) models.CivilDate {
	t.Helper()
	d, err := models.ParseCivilDate(s)
	require.NoError(t, err)
	return d
}

func TestIsBusinessDay(t *testing.T) {
	svc := NewScheduleService(config.DefaultHolidays)

	assert.True(t, svc.IsBusinessDay(mustDate(t, "2026-09-14")))  // Monday
	assert.False(t, svc.IsBusinessDay(mustDate(t, "2026-09-12"))) // Saturday
	assert.False(t, svc.IsBusinessDay(mustDate(t, "2026-09-13"))) // Sunday
	assert.False(t, svc.IsBusinessDay(mustDate(t, "2026-09-15"))) // Independencia
	assert.False(t, svc.IsBusinessDay(mustDate(t, "2026-12-25"))) // Navidad
}

func TestDeliveryDate_BusinessDaysSkipWeekend(t *testing.T) {
	svc := NewScheduleService(config.DefaultHolidays)

	// Friday plus one business day lands on Monday.
	est, err := svc.DeliveryDate(mustDate(t, "2026-09-11"), 1, true)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-14", est.DeliveryDate.String())
	assert.Equal(t, 1, est.LeadTimeDays)
	assert.True(t, est.BusinessDaysOnly)
}

func TestDeliveryDate_BusinessDaysSkipHoliday(t *testing.T) {
	svc := NewScheduleService(config.DefaultHolidays)

	// Monday 2026-09-14 plus five business days: the 15th is a holiday and
	// the 19th/20th are a weekend, so delivery lands on Tuesday the 22nd.
	est, err := svc.DeliveryDate(mustDate(t, "2026-09-14"), 5, true)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-22", est.DeliveryDate.String())
}

func TestDeliveryDate_CalendarDays(t *testing.T) {
	svc := NewScheduleService(config.DefaultHolidays)

	est, err := svc.DeliveryDate(mustDate(t, "2026-09-11"), 5, false)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-16", est.DeliveryDate.String())
	assert.False(t, est.BusinessDaysOnly)
}

func TestDeliveryDate_ZeroLeadTime(t *testing.T) {
	svc := NewScheduleService(config.DefaultHolidays)

	est, err := svc.DeliveryDate(mustDate(t, "2026-09-15"), 0, true)
	require.NoError(t, err)
	// Zero lead time keeps the order date even when it is not a business day.
	assert.Equal(t, "2026-09-15", est.DeliveryDate.String())
}

func TestDeliveryDate_InvalidInputs(t *testing.T) {
	svc := NewScheduleService(config.DefaultHolidays)

	_, err := svc.DeliveryDate(models.CivilDate{}, 3, true)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.DeliveryDate(mustDate(t, "2026-09-14"), -1, true)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestDeliveryDate_NoHolidayCalendar(t *testing.T) {
	svc := NewScheduleService(nil)

	// Without a holiday calendar the 15th counts as a working day.
	est, err := svc.DeliveryDate(mustDate(t, "2026-09-14"), 1, true)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", est.DeliveryDate.String())
}
