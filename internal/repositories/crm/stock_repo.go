package crm

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/utils"
)

type StockRepository interface {
	// FindByQuery matches a free-form product mention against stock keys by
	// containment, e.g. "un demoledor grande" resolves the "demoledor" item.
	FindByQuery(ctx context.Context, query string) (*models.StockItem, error)
	All(ctx context.Context) ([]models.StockItem, error)
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db: db}
}

func (r *stockRepo) FindByQuery(ctx context.Context, query string) (*models.StockItem, error) {
	items, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	for i := range items {
		if strings.Contains(q, items[i].Key) {
			return &items[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *stockRepo) All(ctx context.Context) ([]models.StockItem, error) {
	var rows []models.StockItem
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return rows, nil
}
