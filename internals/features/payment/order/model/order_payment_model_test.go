package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestGatewayRef(t *testing.T) {
	t.Run("kolom typed menang", func(t *testing.T) {
		p := OrderPayment{
			OrderPaymentGatewayReference: strPtr(" 12345 "),
			OrderPaymentNotes:            strPtr(`{"gateway_reference":"legacy-999"}`),
		}
		assert.Equal(t, "12345", p.GatewayRef())
	})

	t.Run("fallback notes legacy", func(t *testing.T) {
		p := OrderPayment{
			OrderPaymentNotes: strPtr(`{"gateway_reference":"legacy-999","other":"x"}`),
		}
		assert.Equal(t, "legacy-999", p.GatewayRef())
	})

	t.Run("notes bukan json", func(t *testing.T) {
		p := OrderPayment{OrderPaymentNotes: strPtr("catatan manual admin")}
		assert.Equal(t, "", p.GatewayRef())
	})

	t.Run("kosong dua-duanya", func(t *testing.T) {
		p := OrderPayment{}
		assert.Equal(t, "", p.GatewayRef())
	})

	t.Run("typed kosong tetap fallback", func(t *testing.T) {
		p := OrderPayment{
			OrderPaymentGatewayReference: strPtr("  "),
			OrderPaymentNotes:            strPtr(`{"gateway_reference":"legacy-999"}`),
		}
		assert.Equal(t, "legacy-999", p.GatewayRef())
	})
}

func TestCurrencyOrShopDefault(t *testing.T) {
	p := OrderPayment{OrderPaymentCurrency: "USD"}
	assert.Equal(t, "USD", p.CurrencyOrShopDefault())

	p = OrderPayment{Order: &Order{OrderShopCurrency: "NGN"}}
	assert.Equal(t, "NGN", p.CurrencyOrShopDefault())

	p = OrderPayment{}
	assert.Equal(t, "", p.CurrencyOrShopDefault())
}

func TestCustomerEmailFallback(t *testing.T) {
	shopID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	o := Order{OrderShopID: shopID, OrderCustomerEmail: strPtr("real@example.com")}
	assert.Equal(t, "real@example.com", o.CustomerEmail())

	o = Order{OrderShopID: shopID}
	assert.Equal(t, "customer+11111111-1111-1111-1111-111111111111@tokoku.app", o.CustomerEmail())

	o = Order{OrderShopID: shopID, OrderCustomerEmail: strPtr("")}
	assert.Equal(t, "customer+11111111-1111-1111-1111-111111111111@tokoku.app", o.CustomerEmail())
}
