// Package orders is the idempotent order write path plus its read side.
// Materialize records one durable row per cart line exactly once per
// checkout; replayed payment confirmations return the existing rows.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rtavara/mercafresh-backend/pkg/db"
	"github.com/rtavara/mercafresh-backend/pkg/db/models"
	pkgerrors "github.com/rtavara/mercafresh-backend/pkg/errors"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
	"github.com/rtavara/mercafresh-backend/pkg/pagination"
)

const receiptConstraint = "uq_checkout_receipts_user_payment"

// errReplayedCheckout aborts the transaction when the receipt insert hits
// the uniqueness constraint, so the existing order set can be fetched
// outside the rolled-back transaction.
var errReplayedCheckout = errors.New("checkout already materialized")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo: repo,
		tx:   tx,
		logg: logg,
	}, nil
}

// Materialize inserts one order row per cart line and, for online payments,
// a checkout receipt in the same transaction. The receipt's uniqueness
// constraint on (user_id, payment_id) is the storage-level idempotency
// boundary: a redelivered payment confirmation rolls back and returns the
// rows written by the first delivery.
func (s *service) Materialize(ctx context.Context, input MaterializeInput) ([]models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", input.PaymentStatus))
	}

	orderRef := newOrderRef()
	rows := make([]models.Order, 0, len(input.Lines))
	for _, line := range input.Lines {
		rows = append(rows, models.Order{
			ID:                uuid.New(),
			OrderRef:          orderRef,
			UserID:            input.UserID,
			ProductID:         line.ProductID,
			ProductName:       line.ProductName,
			ProductImage:      line.ProductImage,
			PaymentID:         input.PaymentID,
			PaymentStatus:     input.PaymentStatus,
			DeliveryAddressID: input.AddressID,
			Quantity:          line.Quantity,
			UnitPriceCents:    int(line.EffectiveUnitPriceCents),
			SubTotalCents:     int(line.LineTotalCents),
			TotalCents:        int(line.LineTotalCents),
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.PaymentID != "" {
			receipt := &models.CheckoutReceipt{
				ID:        uuid.New(),
				UserID:    input.UserID,
				PaymentID: input.PaymentID,
			}
			if err := repo.CreateReceipt(ctx, receipt); err != nil {
				if db.IsUniqueViolation(err, receiptConstraint) {
					return errReplayedCheckout
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record checkout receipt")
			}
		}
		if err := repo.CreateOrders(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order rows")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errReplayedCheckout) {
			ctx = s.logg.WithFields(ctx, map[string]any{"payment_id": input.PaymentID})
			s.logg.Info(ctx, "checkout already materialized, returning existing orders")
			existing, ferr := s.repo.FindByUserAndPayment(ctx, input.UserID, input.PaymentID)
			if ferr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "load existing orders")
			}
			return existing, nil
		}
		return nil, err
	}
	return rows, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// Report aggregates orders by UTC calendar day. The headline totals are
// computed from the buckets so the two can never disagree.
func (s *service) Report(ctx context.Context, window ReportRange) (*SalesReport, error) {
	if window.Start != nil && window.End != nil && window.End.Before(*window.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date before start date")
	}

	rows, err := s.repo.FindBetween(ctx, window.Start, window.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders for report")
	}

	buckets := map[string]*DailySales{}
	for _, row := range rows {
		day := row.CreatedAt.UTC().Format("2006-01-02")
		bucket, ok := buckets[day]
		if !ok {
			bucket = &DailySales{Date: day}
			buckets[day] = bucket
		}
		bucket.TotalSalesCents += int64(row.TotalCents)
		bucket.TotalOrders++
	}

	report := &SalesReport{ByDate: make([]DailySales, 0, len(buckets))}
	for _, bucket := range buckets {
		report.ByDate = append(report.ByDate, *bucket)
		report.TotalSalesCents += bucket.TotalSalesCents
		report.TotalOrders += bucket.TotalOrders
	}
	sort.Slice(report.ByDate, func(i, j int) bool {
		return report.ByDate[i].Date < report.ByDate[j].Date
	})
	return report, nil
}

// newOrderRef mints the human-correlatable reference shared by every row of
// one checkout, distinct from the storage primary keys.
func newOrderRef() string {
	return "MF-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
