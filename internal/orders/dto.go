package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/rtavara/mercafresh-backend/internal/cart"
	"github.com/rtavara/mercafresh-backend/pkg/db/models"
	"github.com/rtavara/mercafresh-backend/pkg/enums"
)

// MaterializeInput carries everything needed to durably record one checkout.
// PaymentID is empty for cash orders and the processor's payment identifier
// for online orders.
type MaterializeInput struct {
	UserID        uuid.UUID
	AddressID     uuid.UUID
	PaymentID     string
	PaymentStatus enums.PaymentStatus
	Lines         []cart.Line
}

// OrderList is a cursor-paginated page of a user's orders, newest first.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}

// ReportRange bounds a sales report. Nil means unbounded on that side; End
// is exclusive.
type ReportRange struct {
	Start *time.Time
	End   *time.Time
}

// DailySales is one calendar-day bucket of the sales report, in UTC.
type DailySales struct {
	Date            string `json:"date"`
	TotalSalesCents int64  `json:"total_sales_cents"`
	TotalOrders     int    `json:"total_orders"`
}

// SalesReport aggregates materialized orders by day. The headline totals are
// the sum over the buckets, so they can never drift apart.
type SalesReport struct {
	TotalSalesCents int64        `json:"total_sales_cents"`
	TotalOrders     int          `json:"total_orders"`
	ByDate          []DailySales `json:"by_date"`
}
