package crm

import (
	"context"

	"gorm.io/gorm"

	"github.com/concesa/salesagent/internal/models"
)

type ConversationRepository interface {
	Insert(ctx context.Context, rec *models.ConversationRecord) error
	ListByCustomer(ctx context.Context, customerID uint, limit int) ([]models.ConversationRecord, error)
	WithTx(tx *gorm.DB) ConversationRepository
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) WithTx(tx *gorm.DB) ConversationRepository {
	return &conversationRepo{db: tx}
}

func (r *conversationRepo) Insert(ctx context.Context, rec *models.ConversationRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *conversationRepo) ListByCustomer(ctx context.Context, customerID uint, limit int) ([]models.ConversationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.ConversationRecord
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
