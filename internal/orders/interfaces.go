package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rtavara/mercafresh-backend/pkg/db/models"
	"github.com/rtavara/mercafresh-backend/pkg/pagination"
)

// Repository defines persistence operations for order and receipt tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrders(ctx context.Context, rows []models.Order) error
	CreateReceipt(ctx context.Context, receipt *models.CheckoutReceipt) error
	FindByUserAndPayment(ctx context.Context, userID uuid.UUID, paymentID string) ([]models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	FindBetween(ctx context.Context, start, end *time.Time) ([]models.Order, error)
}

// Service is the order materialization and reporting surface.
type Service interface {
	Materialize(ctx context.Context, input MaterializeInput) ([]models.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	Report(ctx context.Context, window ReportRange) (*SalesReport, error)
}
