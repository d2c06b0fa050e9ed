package crm

import (
	"context"

	"gorm.io/gorm"

	"github.com/concesa/salesagent/internal/models"
)

type InterestRepository interface {
	Insert(ctx context.Context, ev *models.InterestEvent) error
	Count(ctx context.Context) (int64, error)
	TopProducts(ctx context.Context, limit int) ([]models.ProductCount, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]models.InterestEvent, error)
	WithTx(tx *gorm.DB) InterestRepository
}

type interestRepo struct {
	db *gorm.DB
}

func NewInterestRepo(db *gorm.DB) InterestRepository {
	return &interestRepo{db: db}
}

func (r *interestRepo) WithTx(tx *gorm.DB) InterestRepository {
	return &interestRepo{db: tx}
}

func (r *interestRepo) Insert(ctx context.Context, ev *models.InterestEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *interestRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.InterestEvent{}).Count(&n).Error
	return n, err
}

func (r *interestRepo) TopProducts(ctx context.Context, limit int) ([]models.ProductCount, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []models.ProductCount
	err := r.db.WithContext(ctx).
		Model(&models.InterestEvent{}).
		Select("product, COUNT(*) AS inquiries").
		Group("product").
		Order("inquiries DESC, product ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *interestRepo) ListByCustomer(ctx context.Context, customerID uint) ([]models.InterestEvent, error) {
	var rows []models.InterestEvent
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
