package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rtavara/mercafresh-backend/internal/cart"
	"github.com/rtavara/mercafresh-backend/pkg/db/models"
	"github.com/rtavara/mercafresh-backend/pkg/enums"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
)

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func newOrdersService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "orders-test"})
	svc, err := NewService(NewRepository(db), sqliteTxRunner{db: db}, logg)
	require.NoError(t, err)
	return svc
}

func sampleLines() []cart.Line {
	return []cart.Line{
		{
			ProductID:               uuid.New(),
			ProductName:             "Organic Avocado",
			ProductImage:            "https://cdn.example.com/avocado.jpg",
			UnitPriceCents:          9900,
			DiscountPercent:         10,
			EffectiveUnitPriceCents: 8900,
			Quantity:                2,
			LineTotalCents:          17800,
		},
		{
			ProductID:               uuid.New(),
			ProductName:             "Whole Milk 1L",
			UnitPriceCents:          5000,
			EffectiveUnitPriceCents: 5000,
			Quantity:                1,
			LineTotalCents:          5000,
		},
	}
}

func TestMaterializeCashOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	userID := uuid.New()

	rows, err := svc.Materialize(context.Background(), MaterializeInput{
		UserID:        userID,
		AddressID:     uuid.New(),
		PaymentStatus: enums.PaymentStatusCashOnDelivery,
		Lines:         sampleLines(),
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, rows[0].OrderRef, rows[1].OrderRef)
	require.Equal(t, "", rows[0].PaymentID)
	require.Equal(t, 17800, rows[0].TotalCents)
	require.Equal(t, 5000, rows[1].TotalCents)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 2, count)

	// cash orders write no receipt
	var receipts int64
	require.NoError(t, db.Model(&models.CheckoutReceipt{}).Count(&receipts).Error)
	require.EqualValues(t, 0, receipts)
}

func TestMaterializeOnlineReplayReturnsExistingRows(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	userID := uuid.New()

	input := MaterializeInput{
		UserID:        userID,
		AddressID:     uuid.New(),
		PaymentID:     "pi_replay",
		PaymentStatus: enums.PaymentStatusPaid,
		Lines:         sampleLines(),
	}

	first, err := svc.Materialize(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := svc.Materialize(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, second, 2)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 2, count)

	firstIDs := map[uuid.UUID]bool{first[0].ID: true, first[1].ID: true}
	require.True(t, firstIDs[second[0].ID])
	require.True(t, firstIDs[second[1].ID])
}

func TestMaterializeValidation(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)

	_, err := svc.Materialize(context.Background(), MaterializeInput{
		AddressID:     uuid.New(),
		PaymentStatus: enums.PaymentStatusCashOnDelivery,
		Lines:         sampleLines(),
	})
	require.Error(t, err)

	_, err = svc.Materialize(context.Background(), MaterializeInput{
		UserID:        uuid.New(),
		PaymentStatus: enums.PaymentStatusCashOnDelivery,
		Lines:         sampleLines(),
	})
	require.Error(t, err)

	_, err = svc.Materialize(context.Background(), MaterializeInput{
		UserID:        uuid.New(),
		AddressID:     uuid.New(),
		PaymentStatus: enums.PaymentStatusCashOnDelivery,
	})
	require.Error(t, err)
}

func TestReportBucketsByUTCDayAndTotalsMatch(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	userID := uuid.New()

	seedOrder(t, db, userID, 1000, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	seedOrder(t, db, userID, 2000, time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC))
	seedOrder(t, db, userID, 4000, time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC))

	report, err := svc.Report(context.Background(), ReportRange{})
	require.NoError(t, err)
	require.Len(t, report.ByDate, 2)

	require.Equal(t, "2025-06-01", report.ByDate[0].Date)
	require.EqualValues(t, 3000, report.ByDate[0].TotalSalesCents)
	require.Equal(t, 2, report.ByDate[0].TotalOrders)

	require.Equal(t, "2025-06-03", report.ByDate[1].Date)
	require.EqualValues(t, 4000, report.ByDate[1].TotalSalesCents)
	require.Equal(t, 1, report.ByDate[1].TotalOrders)

	var bucketSum int64
	var bucketCount int
	for _, b := range report.ByDate {
		bucketSum += b.TotalSalesCents
		bucketCount += b.TotalOrders
	}
	require.Equal(t, bucketSum, report.TotalSalesCents)
	require.Equal(t, bucketCount, report.TotalOrders)
}

func TestReportRejectsInvertedRange(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)

	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Report(context.Background(), ReportRange{Start: &start, End: &end})
	require.Error(t, err)
}
