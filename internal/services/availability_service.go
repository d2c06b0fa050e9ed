package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/concesa/salesagent/internal/models"
	crmrepo "github.com/concesa/salesagent/internal/repositories/crm"
	"github.com/concesa/salesagent/internal/utils"
)

// AvailabilityService checks equipment stock. Unknown products are an error,
// never a silent "available".
type AvailabilityService interface {
	Check(ctx context.Context, product string, start models.CivilDate) (*models.Availability, error)
}

type availabilityService struct {
	stock crmrepo.StockRepository
}

func NewAvailabilityService(stock crmrepo.StockRepository) AvailabilityService {
	return &availabilityService{stock: stock}
}

func (s *availabilityService) Check(ctx context.Context, product string, start models.CivilDate) (*models.Availability, error) {
	const op = "AvailabilityService.Check"

	product = strings.TrimSpace(product)
	if product == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "product is required", nil)
	}

	item, err := s.stock.FindByQuery(ctx, product)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeProductNotFound, op, fmt.Sprintf("unknown product %q", product), err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to read stock", err)
	}

	av := &models.Availability{
		Product: item.Name,
		Units:   item.Units,
	}
	if item.Units > 0 {
		av.Available = true
		return av, nil
	}
	if item.NextAvailableAt != nil {
		next := models.NewCivilDate(*item.NextAvailableAt)
		av.NextAvailable = &next
		// A start on or after the restock date can still be served.
		if !start.IsZero() && !start.Before(next) {
			av.Available = true
		}
	}
	return av, nil
}
