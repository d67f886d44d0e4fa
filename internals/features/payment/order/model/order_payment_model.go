// file: internals/features/payment/order/model/order_payment_model.go
package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* ================================
   ENUM mirror (harus cocok dgn DB)
================================ */

type OrderPaymentStatus string

const (
	OrderPaymentStatusPending           OrderPaymentStatus = "pending"
	OrderPaymentStatusPaid              OrderPaymentStatus = "paid"
	OrderPaymentStatusFailed            OrderPaymentStatus = "failed"
	OrderPaymentStatusRefunded          OrderPaymentStatus = "refunded"
	OrderPaymentStatusPartiallyRefunded OrderPaymentStatus = "partially_refunded"
	OrderPaymentStatusExpired           OrderPaymentStatus = "expired"
)

/* ================================
   MODEL: order_payments
================================ */

type OrderPayment struct {
	OrderPaymentID uuid.UUID `json:"order_payment_id" gorm:"column:order_payment_id;type:uuid;default:gen_random_uuid();primaryKey"`

	OrderPaymentOrderID uuid.UUID `json:"order_payment_order_id" gorm:"column:order_payment_order_id;type:uuid;not null;index"`
	Order               *Order    `json:"order,omitempty" gorm:"foreignKey:OrderPaymentOrderID;references:OrderID"`

	// Reference = idempotency/correlation key milik merchant.
	// Dipakai verbatim di initiate → verify → webhook.
	OrderPaymentReference string `json:"order_payment_reference" gorm:"column:order_payment_reference;type:varchar(64);not null;uniqueIndex"`

	OrderPaymentAmount   float64 `json:"order_payment_amount"   gorm:"column:order_payment_amount;type:numeric(18,2);not null;check:order_payment_amount>=0"`
	OrderPaymentCurrency string  `json:"order_payment_currency" gorm:"column:order_payment_currency;type:varchar(8);not null"`

	OrderPaymentProvider string             `json:"order_payment_provider" gorm:"column:order_payment_provider;type:varchar(32);not null"`
	OrderPaymentStatus   OrderPaymentStatus `json:"order_payment_status"   gorm:"column:order_payment_status;type:order_payment_status;not null;default:'pending'"`

	// Referensi transaksi di sisi provider, diisi saat initiate/verify/webhook.
	OrderPaymentGatewayReference *string `json:"order_payment_gateway_reference" gorm:"column:order_payment_gateway_reference;type:text"`

	// Legacy: map terserialisasi di kolom notes (skema lama).
	// Masih dibaca sebagai fallback saat refund.
	OrderPaymentNotes *string `json:"order_payment_notes" gorm:"column:order_payment_notes;type:text"`

	OrderPaymentMethod     *string  `json:"order_payment_method"      gorm:"column:order_payment_method;type:varchar(40)"`
	OrderPaymentChannel    *string  `json:"order_payment_channel"     gorm:"column:order_payment_channel;type:varchar(40)"`
	OrderPaymentGatewayFee *float64 `json:"order_payment_gateway_fee" gorm:"column:order_payment_gateway_fee;type:numeric(18,2)"`

	OrderPaymentRefundedAmount float64 `json:"order_payment_refunded_amount" gorm:"column:order_payment_refunded_amount;type:numeric(18,2);not null;default:0"`

	// Raw response provider terakhir (audit)
	OrderPaymentRaw datatypes.JSON `json:"order_payment_raw" gorm:"column:order_payment_raw;type:jsonb"`

	OrderPaymentPaidAt     *time.Time `json:"order_payment_paid_at"     gorm:"column:order_payment_paid_at;type:timestamptz"`
	OrderPaymentRefundedAt *time.Time `json:"order_payment_refunded_at" gorm:"column:order_payment_refunded_at;type:timestamptz"`

	OrderPaymentCreatedAt time.Time  `json:"order_payment_created_at" gorm:"column:order_payment_created_at;not null;default:now()"`
	OrderPaymentUpdatedAt time.Time  `json:"order_payment_updated_at" gorm:"column:order_payment_updated_at;not null;default:now()"`
	OrderPaymentDeletedAt *time.Time `json:"order_payment_deleted_at" gorm:"column:order_payment_deleted_at"`
}

func (OrderPayment) TableName() string { return "order_payments" }

// GatewayRef mengembalikan id transaksi di sisi provider.
// Kolom typed dicoba dulu; fallback parse notes JSON lama
// ({"gateway_reference": "..."}). Kosong bila dua-duanya tidak ada.
func (p *OrderPayment) GatewayRef() string {
	if p.OrderPaymentGatewayReference != nil && strings.TrimSpace(*p.OrderPaymentGatewayReference) != "" {
		return strings.TrimSpace(*p.OrderPaymentGatewayReference)
	}
	if p.OrderPaymentNotes == nil {
		return ""
	}
	var notes map[string]any
	if err := json.Unmarshal([]byte(*p.OrderPaymentNotes), &notes); err != nil {
		return ""
	}
	if ref, ok := notes["gateway_reference"].(string); ok {
		return strings.TrimSpace(ref)
	}
	return ""
}

// Currency dengan fallback ke shop currency order (kalau ter-preload).
func (p *OrderPayment) CurrencyOrShopDefault() string {
	if strings.TrimSpace(p.OrderPaymentCurrency) != "" {
		return p.OrderPaymentCurrency
	}
	if p.Order != nil {
		return p.Order.OrderShopCurrency
	}
	return ""
}
