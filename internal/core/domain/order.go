package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderReserved       OrderStatus = "reserved"
	OrderPaymentPending OrderStatus = "payment_pending"
	OrderPaid           OrderStatus = "paid"
	OrderFailed         OrderStatus = "failed"
	OrderShipped        OrderStatus = "shipped"
	OrderCompleted      OrderStatus = "completed"
	OrderCancelled      OrderStatus = "cancelled"
	OrderExpired        OrderStatus = "expired"
)

var OrderStatuses = []OrderStatus{
	OrderPending, OrderReserved, OrderPaymentPending, OrderPaid,
	OrderFailed, OrderShipped, OrderCompleted, OrderCancelled, OrderExpired,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentAuthorized    PaymentStatus = "authorized"
	PaymentCaptured      PaymentStatus = "captured"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentPartialRefund PaymentStatus = "partial_refund"
)

type RefundStatus string

const (
	RefundNone            RefundStatus = "none"
	RefundPendingApproval RefundStatus = "pending_approval"
	RefundApproved        RefundStatus = "approved"
	RefundRejected        RefundStatus = "rejected"
	RefundProcessing      RefundStatus = "processing"
	RefundCompleted       RefundStatus = "completed"
	RefundFailed          RefundStatus = "failed"
)

type (
	Order struct {
		ID            string
		OrderNumber   string
		Items         []OrderItem
		Customer      Customer
		Status        OrderStatus
		PaymentStatus PaymentStatus
		Total         decimal.Decimal
		Refund        *RefundRequest
		CreatedAt     time.Time
	}

	OrderItem struct {
		ProductID    string
		ProductTitle string
		SKU          string
		Size         string
		Color        string
		Quantity     int
		Price        decimal.Decimal
	}

	// Customer is either a registered user (UserID set) or a guest.
	Customer struct {
		UserID string
		Name   string
		Email  string
		Phone  string
	}

	RefundRequest struct {
		Status          RefundStatus
		Amount          decimal.Decimal
		Reason          string
		AdminNotes      string
		RejectionReason string
		RequestedAt     time.Time
	}
)

func (o Order) EntityID() string { return o.ID }

func (c Customer) IsGuest() bool { return c.UserID == "" }

// AwaitsRefundDecision reports whether the refund can be approved or rejected.
func (o Order) AwaitsRefundDecision() bool {
	return o.Refund != nil && o.Refund.Status == RefundPendingApproval
}
