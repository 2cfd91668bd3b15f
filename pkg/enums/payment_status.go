package enums

// PaymentStatus tracks how an order was (or will be) paid for.
type PaymentStatus string

const (
	PaymentStatusCashOnDelivery PaymentStatus = "CASH_ON_DELIVERY"
	PaymentStatusPaid           PaymentStatus = "PAID"
	PaymentStatusPending        PaymentStatus = "PENDING"
	PaymentStatusFailed         PaymentStatus = "FAILED"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusCashOnDelivery,
	PaymentStatusPaid,
	PaymentStatusPending,
	PaymentStatusFailed,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// PaymentStatusFromProcessor maps the processor's session payment_status
// values onto the order statuses stored locally.
func PaymentStatusFromProcessor(value string) PaymentStatus {
	switch value {
	case "paid", "no_payment_required":
		return PaymentStatusPaid
	case "unpaid":
		return PaymentStatusPending
	default:
		return PaymentStatusFailed
	}
}
