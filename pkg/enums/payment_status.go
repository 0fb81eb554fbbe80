package enums

import "fmt"

// PaymentStatus tracks the money side of a single order item.
type PaymentStatus string

const (
	PaymentStatusPending        PaymentStatus = "Pending"
	PaymentStatusPaid           PaymentStatus = "Paid"
	PaymentStatusFailed         PaymentStatus = "Failed"
	PaymentStatusRefunded       PaymentStatus = "Refunded"
	PaymentStatusRefundCredited PaymentStatus = "Refund Credited"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
	PaymentStatusRefundCredited,
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

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
