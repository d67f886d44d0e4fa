// file: internals/features/payment/order/model/order_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* ================================
   MODEL: orders
   Dipakai read-only oleh gateway layer — order dibuat oleh modul
   order management (di luar subsistem ini).
================================ */

type Order struct {
	OrderID uuid.UUID `json:"order_id" gorm:"column:order_id;type:uuid;default:gen_random_uuid();primaryKey"`

	// Tenant & shop
	OrderTenantID uuid.UUID `json:"order_tenant_id" gorm:"column:order_tenant_id;type:uuid;not null"`
	OrderShopID   uuid.UUID `json:"order_shop_id"   gorm:"column:order_shop_id;type:uuid;not null"`

	OrderNumber string `json:"order_number" gorm:"column:order_number;type:varchar(64);not null;uniqueIndex"`

	// Nominal (major units, desimal)
	OrderTotalAmount float64 `json:"order_total_amount" gorm:"column:order_total_amount;type:numeric(18,2);not null;check:order_total_amount>=0"`
	OrderCurrency    string  `json:"order_currency"     gorm:"column:order_currency;type:varchar(8);not null;default:NGN"`

	// Mata uang default toko (fallback saat currency payment kosong)
	OrderShopCurrency string `json:"order_shop_currency" gorm:"column:order_shop_currency;type:varchar(8);not null;default:NGN"`

	// Customer (opsional)
	OrderCustomerName  *string `json:"order_customer_name"  gorm:"column:order_customer_name;type:varchar(120)"`
	OrderCustomerEmail *string `json:"order_customer_email" gorm:"column:order_customer_email;type:varchar(160)"`
	OrderCustomerPhone *string `json:"order_customer_phone" gorm:"column:order_customer_phone;type:varchar(32)"`

	OrderCreatedAt time.Time  `json:"order_created_at" gorm:"column:order_created_at;not null;default:now()"`
	OrderUpdatedAt time.Time  `json:"order_updated_at" gorm:"column:order_updated_at;not null;default:now()"`
	OrderDeletedAt *time.Time `json:"order_deleted_at" gorm:"column:order_deleted_at"`
}

func (Order) TableName() string { return "orders" }

// CustomerEmail mengembalikan email customer atau fallback noreply per shop.
func (o *Order) CustomerEmail() string {
	if o.OrderCustomerEmail != nil && *o.OrderCustomerEmail != "" {
		return *o.OrderCustomerEmail
	}
	return "customer+" + o.OrderShopID.String() + "@tokoku.app"
}

func (o *Order) CustomerName() string {
	if o.OrderCustomerName != nil {
		return *o.OrderCustomerName
	}
	return ""
}

func (o *Order) CustomerPhone() string {
	if o.OrderCustomerPhone != nil {
		return *o.OrderCustomerPhone
	}
	return ""
}
