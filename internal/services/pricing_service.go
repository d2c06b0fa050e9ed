package services

import (
	"github.com/concesa/salesagent/config"
	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/utils"
)

// PricingService computes rental quotes with duration-tiered discounts.
// Pure arithmetic over integer centavos; no I/O.
type PricingService interface {
	Quote(dailyRateCents int64, days int) (*models.PricingQuote, error)
}

type pricingService struct {
	tiers []config.Tier // ascending by MinDays
}

func NewPricingService(tiers []config.Tier) PricingService {
	return &pricingService{tiers: tiers}
}

func (s *pricingService) Quote(dailyRateCents int64, days int) (*models.PricingQuote, error) {
	const op = "PricingService.Quote"

	if days <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "rental days must be positive", nil)
	}
	if dailyRateCents <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "daily rate must be positive", nil)
	}

	percent := 0
	for _, t := range s.tiers {
		if days >= t.MinDays {
			percent = t.Percent
		}
	}

	subtotal := dailyRateCents * int64(days)
	// Half-centavo amounts round half away from zero; operands are
	// non-negative here so rounding up is the same thing.
	discount := (subtotal*int64(percent) + 50) / 100

	return &models.PricingQuote{
		DailyRateCents:  dailyRateCents,
		Days:            days,
		DiscountPercent: percent,
		SubtotalCents:   subtotal,
		DiscountCents:   discount,
		TotalCents:      subtotal - discount,
	}, nil
}
