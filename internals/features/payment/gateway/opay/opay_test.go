package opay

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoku_backend/internals/features/payment/gateway"
	orderModel "tokoku_backend/internals/features/payment/order/model"
)

func testConfig(baseURL string) Config {
	return Config{
		MerchantID: "256612345678",
		PublicKey:  "OPAYPUB-x",
		SecretKey:  "OPAYPRV-x",
		BaseURL:    baseURL,
	}
}

func testOrder() *orderModel.Order {
	email := "buyer@example.com"
	return &orderModel.Order{
		OrderID:            uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000"),
		OrderTenantID:      uuid.New(),
		OrderShopID:        uuid.New(),
		OrderNumber:        "ORD-1001",
		OrderTotalAmount:   5000.00,
		OrderCurrency:      "NGN",
		OrderShopCurrency:  "NGN",
		OrderCustomerEmail: &email,
	}
}

func TestIsAvailableRequiresAllCredentials(t *testing.T) {
	assert.True(t, New(testConfig("")).IsAvailable())
	assert.False(t, New(Config{MerchantID: "m", PublicKey: "p"}).IsAvailable())
	assert.False(t, New(Config{MerchantID: "m", SecretKey: "s"}).IsAvailable())
	assert.False(t, New(Config{}).IsAvailable())
}

func TestInitializePayment(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/international/cashier/create", r.URL.Path)
		// create memakai public key, bukan signature
		assert.Equal(t, "Bearer OPAYPUB-x", r.Header.Get("Authorization"))
		assert.Equal(t, "256612345678", r.Header.Get("MerchantId"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"code":"00000","message":"SUCCESSFUL","data":{"cashierUrl":"https://cashier.opay.com/x","orderNo":"211009140896593010","reference":"PAY-ORD-1001-a1b2c3d4"}}`))
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL))
	res := a.InitializePayment(context.Background(), testOrder(), gateway.InitOptions{
		Metadata: map[string]any{"client_ip": "203.0.113.7"},
	})

	require.Equal(t, gateway.InitiationRedirect, res.Status)
	assert.Equal(t, "https://cashier.opay.com/x", res.AuthorizationURL)
	assert.Equal(t, "211009140896593010", res.Metadata["order_no"])

	amount, ok := captured["amount"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 500000.0, amount["total"])
	assert.Equal(t, "NGN", amount["currency"])
	assert.Equal(t, "NG", captured["country"])
	assert.Equal(t, "203.0.113.7", captured["userClientIP"])
}

// kode selain 00000 = kegagalan bisnis, walau HTTP 200
func TestInitializePaymentNonSuccessCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"02004","message":"merchant not available"}`))
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL))
	res := a.InitializePayment(context.Background(), testOrder(), gateway.InitOptions{})
	assert.Equal(t, gateway.InitiationFailed, res.Status)
	assert.Equal(t, "merchant not available", res.Message)
}

func TestVerifyPayment(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantStatus gateway.VerificationStatus
	}{
		{
			"success",
			`{"code":"00000","data":{"status":"SUCCESS","orderNo":"211009140896593010","amount":{"total":500000,"currency":"NGN"},"completedAt":"2026-01-15T10:30:00Z"}}`,
			gateway.VerificationSuccess,
		},
		{
			"initial masih pending",
			`{"code":"00000","data":{"status":"INITIAL"}}`,
			gateway.VerificationPending,
		},
		{
			"pending",
			`{"code":"00000","data":{"status":"PENDING"}}`,
			gateway.VerificationPending,
		},
		{
			"close",
			`{"code":"00000","data":{"status":"CLOSE","failureReason":"session expired"}}`,
			gateway.VerificationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var authz string
			var rawBody []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/international/cashier/status", r.URL.Path)
				authz = r.Header.Get("Authorization")
				rawBody, _ = io.ReadAll(r.Body)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			a := New(testConfig(srv.URL))
			res := a.VerifyPayment(context.Background(), "PAY-X")
			assert.Equal(t, tt.wantStatus, res.Status)

			// endpoint status ditandatangani HMAC atas body request
			mac := hmac.New(sha512.New, []byte("OPAYPRV-x"))
			mac.Write(rawBody)
			assert.Equal(t, "Bearer "+hex.EncodeToString(mac.Sum(nil)), authz)

			if tt.wantStatus == gateway.VerificationSuccess {
				assert.Equal(t, 5000.00, res.Amount)
				assert.Equal(t, "211009140896593010", res.GatewayReference)
			}
		})
	}
}

// refund OPay tidak tersedia via API: selalu failed, tanpa request keluar
func TestRefundAlwaysFails(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	gwRef := "211009140896593010"
	payment := &orderModel.OrderPayment{
		OrderPaymentReference:        "PAY-X",
		OrderPaymentAmount:           5000.00,
		OrderPaymentCurrency:         "NGN",
		OrderPaymentGatewayReference: &gwRef,
	}

	a := New(testConfig(srv.URL))
	amount := 100.0
	res := a.Refund(context.Background(), payment, &amount, "any reason")

	assert.Equal(t, gateway.RefundFailed, res.Status)
	assert.Contains(t, res.Message, "merchant dashboard")
	assert.Equal(t, int64(0), calls.Load())
	assert.False(t, a.SupportsRefunds())
}

func TestValidateWebhook(t *testing.T) {
	a := New(testConfig(""))
	body := []byte(`{"payload":{"reference":"PAY-X","status":"SUCCESS"}}`)

	mac := hmac.New(sha512.New, []byte("OPAYPRV-x"))
	mac.Write(body)

	headers := http.Header{}
	// header membawa prefix "Bearer " di depan hex digest
	headers.Set("Authorization", "Bearer "+hex.EncodeToString(mac.Sum(nil)))
	assert.True(t, a.ValidateWebhook(&gateway.WebhookRequest{Body: body, Headers: headers}))

	// digest tanpa prefix → tolak
	headers.Set("Authorization", hex.EncodeToString(mac.Sum(nil)))
	assert.False(t, a.ValidateWebhook(&gateway.WebhookRequest{Body: body, Headers: headers}))

	// body diubah → tolak
	headers.Set("Authorization", "Bearer "+hex.EncodeToString(mac.Sum(nil)))
	assert.False(t, a.ValidateWebhook(&gateway.WebhookRequest{Body: []byte(`{"payload":{}}`), Headers: headers}))
}

func TestParseWebhookNestedPayload(t *testing.T) {
	a := New(testConfig(""))
	body := []byte(`{
		"payload": {
			"reference": "PAY-ORD-1001-a1b2c3d4",
			"orderNo": "211009140896593010",
			"status": "SUCCESS",
			"amount": 500000,
			"fee": 5000,
			"currency": "NGN",
			"timestamp": 1768473000000
		},
		"sha512": "ignored",
		"type": "transaction-status"
	}`)

	ev, err := a.ParseWebhook(&gateway.WebhookRequest{Body: body})
	require.NoError(t, err)
	assert.Equal(t, gateway.WebhookStatusSuccess, ev.Status)
	assert.Equal(t, "PAY-ORD-1001-a1b2c3d4", ev.Reference)
	assert.Equal(t, "211009140896593010", ev.GatewayReference)
	require.NotNil(t, ev.Amount)
	assert.Equal(t, 5000.00, *ev.Amount)
	require.NotNil(t, ev.GatewayFee)
	assert.Equal(t, 50.00, *ev.GatewayFee)
	require.NotNil(t, ev.PaidAt)
}

func TestParseWebhookFlatPayload(t *testing.T) {
	a := New(testConfig(""))
	body := []byte(`{"reference":"PAY-X","orderNo":"999","status":"FAIL","amount":100000,"currency":"NGN"}`)

	ev, err := a.ParseWebhook(&gateway.WebhookRequest{Body: body})
	require.NoError(t, err)
	assert.Equal(t, gateway.WebhookStatusFailed, ev.Status)
	assert.Equal(t, "PAY-X", ev.Reference)
	assert.Equal(t, "999", ev.GatewayReference)
}

func TestParseWebhookUnknownStatus(t *testing.T) {
	a := New(testConfig(""))
	body := []byte(`{"reference":"PAY-X","status":"WEIRD"}`)
	ev, err := a.ParseWebhook(&gateway.WebhookRequest{Body: body})
	require.NoError(t, err)
	assert.Equal(t, gateway.WebhookStatusUnknown, ev.Status)
}

// parse tidak boleh punya state tersembunyi: dua kali parse atas
// request yang sama menghasilkan event yang identik (PaidAt dibaca
// dari timestamp payload, bukan jam lokal).
func TestParseWebhookRepeatable(t *testing.T) {
	a := New(testConfig(""))
	req := &gateway.WebhookRequest{Body: []byte(`{"payload":{"reference":"PAY-ORD-1001-a1b2c3d4","orderNo":"211009140896593010","status":"SUCCESS","amount":500000,"fee":5000,"currency":"NGN","timestamp":1768473000000},"type":"transaction-status"}`)}

	first, err := a.ParseWebhook(req)
	require.NoError(t, err)
	second, err := a.ParseWebhook(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSupportedCurrenciesNGNOnly(t *testing.T) {
	assert.Equal(t, []string{"NGN"}, New(Config{}).SupportedCurrencies())
}
