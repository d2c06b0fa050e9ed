package services

import (
	"time"

	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/utils"
)

// ScheduleService resolves delivery dates. Business-day counting skips
// Saturdays, Sundays and the configured holiday calendar.
type ScheduleService interface {
	DeliveryDate(orderDate models.CivilDate, leadDays int, businessDaysOnly bool) (*models.DeliveryEstimate, error)
	IsBusinessDay(d models.CivilDate) bool
}

type scheduleService struct {
	holidays map[string]struct{} // month-day keys, e.g. "09-15"
}

func NewScheduleService(holidays []string) ScheduleService {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h] = struct{}{}
	}
	return &scheduleService{holidays: set}
}

func (s *scheduleService) IsBusinessDay(d models.CivilDate) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := s.holidays[d.MonthDay()]
	return !holiday
}

func (s *scheduleService) DeliveryDate(orderDate models.CivilDate, leadDays int, businessDaysOnly bool) (*models.DeliveryEstimate, error) {
	const op = "ScheduleService.DeliveryDate"

	if orderDate.IsZero() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "order date is required", nil)
	}
	if leadDays < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "lead time must not be negative", nil)
	}

	date := orderDate
	if businessDaysOnly {
		for remaining := leadDays; remaining > 0; {
			date = date.AddDays(1)
			if s.IsBusinessDay(date) {
				remaining--
			}
		}
	} else {
		date = date.AddDays(leadDays)
	}

	return &models.DeliveryEstimate{
		OrderDate:        orderDate,
		DeliveryDate:     date,
		LeadTimeDays:     leadDays,
		BusinessDaysOnly: businessDaysOnly,
	}, nil
}
