package orders

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rtavara/mercafresh-backend/api/middleware"
	"github.com/rtavara/mercafresh-backend/api/responses"
	"github.com/rtavara/mercafresh-backend/api/validators"
	"github.com/rtavara/mercafresh-backend/internal/address"
	"github.com/rtavara/mercafresh-backend/internal/cart"
	"github.com/rtavara/mercafresh-backend/internal/checkout"
	internalorders "github.com/rtavara/mercafresh-backend/internal/orders"
	"github.com/rtavara/mercafresh-backend/pkg/enums"
	pkgerrors "github.com/rtavara/mercafresh-backend/pkg/errors"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
	"github.com/rtavara/mercafresh-backend/pkg/pagination"
)

type placeOrderRequest struct {
	ListItems []cart.ItemInput `json:"list_items" validate:"required,min=1,dive"`
	AddressID string           `json:"addressId" validate:"required,uuid4"`

	// Storefront clients send their own totals; they are accepted so the
	// documented body decodes, never trusted. Pricing always comes from the
	// server-side snapshot.
	SubTotalAmt float64 `json:"subTotalAmt"`
	TotalAmt    float64 `json:"totalAmt"`
}

// CashOnDelivery snapshots the cart and materializes the order immediately,
// then clears the cart. No payment processor is involved.
func CashOnDelivery(carts cart.Service, addresses address.Repository, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := resolveAddress(r, addresses, payload.AddressID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := carts.Snapshot(r.Context(), payload.ListItems)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Materialize(r.Context(), internalorders.MaterializeInput{
			UserID:        userID,
			AddressID:     addressID,
			PaymentStatus: enums.PaymentStatusCashOnDelivery,
			Lines:         lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := carts.Clear(r.Context(), userID); err != nil {
			// orders are durable at this point, the next reconciliation
			// attempt happens on the client's cart refresh
			logg.Error(r.Context(), "clear cart after cash order", err)
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, rows)
	}
}

// CheckoutSession snapshots the cart and opens a hosted payment session.
// Nothing durable is written until the webhook confirms payment.
func CheckoutSession(carts cart.Service, addresses address.Repository, svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := resolveAddress(r, addresses, payload.AddressID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := carts.Snapshot(r.Context(), payload.ListItems)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.IssueSession(r.Context(), checkout.IssueSessionInput{
			UserID:    userID,
			Email:     middleware.EmailFromContext(r.Context()),
			AddressID: addressID,
			Lines:     lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// MyOrders returns the caller's orders newest first, cursor-paginated.
func MyOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseIntQuery(r, "limit")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.ListMine(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SalesReport aggregates materialized orders per UTC day over an optional
// date range. Both bounds are inclusive calendar days.
func SalesReport(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		start, err := validators.ParseDateQuery(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseDateQuery(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if end != nil {
			// inclusive end day, orders strictly before the next midnight
			exclusive := end.Add(24 * time.Hour)
			end = &exclusive
		}

		report, err := svc.Report(r.Context(), internalorders.ReportRange{Start: start, End: end})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func parseUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return parsed, nil
}

func resolveAddress(r *http.Request, addresses address.Repository, raw string, userID uuid.UUID) (uuid.UUID, error) {
	addressID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address id")
	}
	if addresses == nil {
		return addressID, nil
	}
	if _, err := addresses.FindActiveByID(r.Context(), addressID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address not found")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify delivery address")
	}
	return addressID, nil
}
