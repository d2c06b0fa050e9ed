package crm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/utils"
)

type CustomerRepository interface {
	// UpsertByName returns the customer with the given name, creating it on
	// first contact. Matching is case-insensitive; the stored spelling is
	// whichever was seen first.
	UpsertByName(ctx context.Context, name string, now time.Time) (*models.Customer, error)
	// TouchContact bumps last contact and the inquiry counter by one.
	TouchContact(ctx context.Context, id uint, now time.Time) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	Count(ctx context.Context) (int64, error)
	CountNewSince(ctx context.Context, since time.Time) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.Customer, error)
	HotLeads(ctx context.Context, minInquiries int) ([]models.Customer, error)
	WithTx(tx *gorm.DB) CustomerRepository
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) WithTx(tx *gorm.DB) CustomerRepository {
	return &customerRepo{db: tx}
}

func (r *customerRepo) UpsertByName(ctx context.Context, name string, now time.Time) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Take(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c = models.Customer{
		Name:           name,
		FirstContactAt: now,
		LastContactAt:  now,
		Status:         models.CustomerStatusNew,
	}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) TouchContact(ctx context.Context, id uint, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_contact_at": now,
			"total_inquiries": gorm.Expr("total_inquiries + 1"),
		}).Error
}

func (r *customerRepo) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *customerRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&n).Error
	return n, err
}

func (r *customerRepo) CountNewSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("first_contact_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (r *customerRepo) Recent(ctx context.Context, limit int) ([]models.Customer, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Order("last_contact_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *customerRepo) HotLeads(ctx context.Context, minInquiries int) ([]models.Customer, error) {
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Where("total_inquiries >= ?", minInquiries).
		Order("total_inquiries DESC, name ASC").
		Find(&rows).Error
	return rows, err
}
