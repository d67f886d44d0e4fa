package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
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

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestInitializePaymentSendsMinorUnits(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_x", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc"}}`))
	}))
	defer srv.Close()

	a := New(Config{SecretKey: "sk_test_x", PublicKey: "pk_test_x", BaseURL: srv.URL})
	res := a.InitializePayment(context.Background(), testOrder(), gateway.InitOptions{})

	require.Equal(t, gateway.InitiationRedirect, res.Status)
	assert.Equal(t, "PAY-ORD-1001-a1b2c3d4", res.Reference)
	assert.Equal(t, "https://checkout.paystack.com/abc", res.AuthorizationURL)
	assert.Equal(t, "abc", res.AccessCode)

	// 5000.00 NGN → 500000 kobo
	assert.Equal(t, 500000.0, captured["amount"])
	assert.Equal(t, "NGN", captured["currency"])
	assert.Equal(t, "buyer@example.com", captured["email"])
	assert.Equal(t, res.Reference, captured["reference"])

	// inline_data untuk embedded checkout ikut terisi
	inline, ok := res.Metadata["inline_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pk_test_x", inline["key"])
	assert.Equal(t, int64(500000), inline["amount"])
}

func TestUnconfiguredShortCircuits(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL}) // tanpa secret key

	init := a.InitializePayment(context.Background(), testOrder(), gateway.InitOptions{})
	assert.Equal(t, gateway.InitiationFailed, init.Status)

	verify := a.VerifyPayment(context.Background(), "PAY-X")
	assert.Equal(t, gateway.VerificationFailed, verify.Status)

	refund := a.Refund(context.Background(), &orderModel.OrderPayment{OrderPaymentReference: "PAY-X"}, nil, "")
	assert.Equal(t, gateway.RefundFailed, refund.Status)

	// tidak boleh ada request keluar sama sekali
	assert.Equal(t, int64(0), calls.Load())
}

func TestInitializePaymentProviderReject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	a := New(Config{SecretKey: "sk_bad", BaseURL: srv.URL})
	res := a.InitializePayment(context.Background(), testOrder(), gateway.InitOptions{})
	assert.Equal(t, gateway.InitiationFailed, res.Status)
	assert.Equal(t, "Invalid key", res.Message)
}

func TestVerifyPayment(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantStatus gateway.VerificationStatus
	}{
		{
			"success",
			`{"status":true,"data":{"status":"success","amount":500000,"currency":"NGN","id":12345,"channel":"card","fees":7500,"paid_at":"2026-01-15T10:30:00Z"}}`,
			gateway.VerificationSuccess,
		},
		{
			"pending",
			`{"status":true,"data":{"status":"pending"}}`,
			gateway.VerificationPending,
		},
		{
			"ongoing juga pending",
			`{"status":true,"data":{"status":"ongoing"}}`,
			gateway.VerificationPending,
		},
		{
			"abandoned",
			`{"status":true,"data":{"status":"abandoned","gateway_response":"Transaction abandoned"}}`,
			gateway.VerificationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transaction/verify/PAY-X", r.URL.Path)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			a := New(Config{SecretKey: "sk_test_x", BaseURL: srv.URL})
			res := a.VerifyPayment(context.Background(), "PAY-X")
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, "PAY-X", res.Reference)

			if tt.wantStatus == gateway.VerificationSuccess {
				// minor unit dikembalikan ke major
				assert.Equal(t, 5000.00, res.Amount)
				assert.Equal(t, 75.00, res.GatewayFee)
				assert.Equal(t, "12345", res.GatewayReference)
				assert.Equal(t, "card", res.Channel)
				require.NotNil(t, res.PaidAt)
			}
		})
	}
}

func TestRefund(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/refund", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"status":true,"data":{"id":999}}`))
	}))
	defer srv.Close()

	gwRef := "12345"
	payment := &orderModel.OrderPayment{
		OrderPaymentReference:        "PAY-X",
		OrderPaymentAmount:           5000.00,
		OrderPaymentCurrency:         "NGN",
		OrderPaymentGatewayReference: &gwRef,
	}

	a := New(Config{SecretKey: "sk_test_x", BaseURL: srv.URL})
	amount := 1500.00
	res := a.Refund(context.Background(), payment, &amount, "customer request")

	require.Equal(t, gateway.RefundSuccess, res.Status)
	assert.Equal(t, 1500.00, res.Amount)
	assert.Equal(t, "999", res.RefundReference)
	assert.Equal(t, "12345", captured["transaction"])
	// partial amount ikut dikonversi ke kobo
	assert.Equal(t, 150000.0, captured["amount"])
	assert.Equal(t, "customer request", captured["merchant_note"])
}

func TestRefundWithoutGatewayRef(t *testing.T) {
	a := New(Config{SecretKey: "sk_test_x"})
	payment := &orderModel.OrderPayment{
		OrderPaymentReference: "PAY-X",
		OrderPaymentAmount:    100,
		OrderPaymentCurrency:  "NGN",
	}
	res := a.Refund(context.Background(), payment, nil, "")
	assert.Equal(t, gateway.RefundFailed, res.Status)
	assert.Contains(t, res.Message, "gateway transaction reference not found")
}

func TestValidateWebhook(t *testing.T) {
	a := New(Config{SecretKey: "sk_test_x"})
	body := []byte(`{"event":"charge.success","data":{"reference":"PAY-X"}}`)

	headers := http.Header{}
	headers.Set("x-paystack-signature", signBody("sk_test_x", body))
	assert.True(t, a.ValidateWebhook(&gateway.WebhookRequest{Body: body, Headers: headers}))

	// body diubah satu byte → tolak
	tampered := append([]byte{}, body...)
	tampered[len(tampered)-2] = 'Y'
	assert.False(t, a.ValidateWebhook(&gateway.WebhookRequest{Body: tampered, Headers: headers}))

	// tanpa header signature → tolak
	assert.False(t, a.ValidateWebhook(&gateway.WebhookRequest{Body: body, Headers: http.Header{}}))
}

func TestValidateWebhookUsesWebhookSecretIfSet(t *testing.T) {
	a := New(Config{SecretKey: "sk_test_x", WebhookSecret: "whsec_y"})
	body := []byte(`{"event":"charge.success"}`)

	headers := http.Header{}
	headers.Set("x-paystack-signature", signBody("whsec_y", body))
	assert.True(t, a.ValidateWebhook(&gateway.WebhookRequest{Body: body, Headers: headers}))

	headers.Set("x-paystack-signature", signBody("sk_test_x", body))
	assert.False(t, a.ValidateWebhook(&gateway.WebhookRequest{Body: body, Headers: headers}))
}

func TestParseWebhook(t *testing.T) {
	a := New(Config{SecretKey: "sk_test_x"})
	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "PAY-ORD-1001-a1b2c3d4",
			"status": "success",
			"amount": 500000,
			"fees": 7500,
			"currency": "NGN",
			"id": 12345,
			"paid_at": "2026-01-15T10:30:00Z",
			"metadata": {"order_id": "abc"}
		}
	}`)

	ev, err := a.ParseWebhook(&gateway.WebhookRequest{Body: body})
	require.NoError(t, err)
	assert.Equal(t, "charge.success", ev.Type)
	assert.Equal(t, gateway.WebhookStatusSuccess, ev.Status)
	assert.Equal(t, "PAY-ORD-1001-a1b2c3d4", ev.Reference)
	assert.Equal(t, "NGN", ev.Currency)
	assert.Equal(t, "12345", ev.GatewayReference)
	require.NotNil(t, ev.Amount)
	assert.Equal(t, 5000.00, *ev.Amount)
	require.NotNil(t, ev.GatewayFee)
	assert.Equal(t, 75.00, *ev.GatewayFee)
	require.NotNil(t, ev.PaidAt)
	assert.Equal(t, "abc", ev.Metadata["order_id"])
}

func TestParseWebhookStatusMapping(t *testing.T) {
	a := New(Config{SecretKey: "sk_test_x"})
	tests := []struct {
		event  string
		status string
		want   gateway.WebhookStatus
	}{
		{"charge.failed", "failed", gateway.WebhookStatusFailed},
		{"refund.processed", "reversed", gateway.WebhookStatusFailed},
		{"charge.dispute.create", "queued", gateway.WebhookStatusPending},
		{"subscription.create", "mystery_status", gateway.WebhookStatusUnknown},
	}
	for _, tt := range tests {
		body, _ := json.Marshal(map[string]any{
			"event": tt.event,
			"data":  map[string]any{"status": tt.status, "reference": "PAY-X"},
		})
		ev, err := a.ParseWebhook(&gateway.WebhookRequest{Body: body})
		require.NoError(t, err)
		assert.Equal(t, tt.want, ev.Status, "event=%s status=%s", tt.event, tt.status)
	}
}

func TestParseWebhookInvalidJSON(t *testing.T) {
	a := New(Config{SecretKey: "sk_test_x"})
	_, err := a.ParseWebhook(&gateway.WebhookRequest{Body: []byte("not-json")})
	assert.Error(t, err)
}

// parse tidak boleh punya state tersembunyi: dua kali parse atas
// request yang sama menghasilkan event yang identik.
func TestParseWebhookRepeatable(t *testing.T) {
	a := New(Config{SecretKey: "sk_test_x"})
	req := &gateway.WebhookRequest{Body: []byte(`{"event":"charge.success","data":{"reference":"PAY-ORD-1001-a1b2c3d4","status":"success","amount":500000,"fees":7500,"currency":"NGN","id":12345,"paid_at":"2026-01-15T10:30:00Z"}}`)}

	first, err := a.ParseWebhook(req)
	require.NoError(t, err)
	second, err := a.ParseWebhook(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
