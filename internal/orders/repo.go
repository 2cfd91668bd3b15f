package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rtavara/mercafresh-backend/pkg/db/models"
	"github.com/rtavara/mercafresh-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrders(ctx context.Context, rows []models.Order) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) CreateReceipt(ctx context.Context, receipt *models.CheckoutReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *repository) FindByUserAndPayment(ctx context.Context, userID uuid.UUID, paymentID string) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Preload("DeliveryAddress").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return &OrderList{Orders: rows, NextCursor: next}, nil
}

func (r *repository) FindBetween(ctx context.Context, start, end *time.Time) ([]models.Order, error) {
	q := r.db.WithContext(ctx)
	if start != nil {
		q = q.Where("created_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("created_at < ?", *end)
	}

	var rows []models.Order
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
