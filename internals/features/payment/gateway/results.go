// file: internals/features/payment/gateway/results.go
package gateway

import "time"

/* =========================================================
   Normalized result types
   Semua adapter mengembalikan tipe ini — caller tidak perlu
   tahu bentuk response provider.
========================================================= */

type InitiationStatus string

const (
	InitiationFailed   InitiationStatus = "failed"
	InitiationRedirect InitiationStatus = "redirect"
	InitiationCrypto   InitiationStatus = "crypto"
)

// PaymentInitiationResult adalah hasil memulai pembayaran.
// Tepat satu varian terisi per pemanggilan (lihat konstruktor).
type PaymentInitiationResult struct {
	Status    InitiationStatus `json:"status"`
	Reference string           `json:"reference,omitempty"`
	Message   string           `json:"message,omitempty"`

	// redirect variant
	AuthorizationURL string `json:"authorization_url,omitempty"`
	AccessCode       string `json:"access_code,omitempty"`

	// crypto variant
	WalletAddress  string     `json:"wallet_address,omitempty"`
	CryptoAmount   float64    `json:"crypto_amount,omitempty"`
	CryptoCurrency string     `json:"crypto_currency,omitempty"`
	QRCode         string     `json:"qr_code,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

func FailedInitiation(message string, reference string) *PaymentInitiationResult {
	return &PaymentInitiationResult{
		Status:    InitiationFailed,
		Reference: reference,
		Message:   message,
	}
}

func RedirectInitiation(reference, authorizationURL, accessCode string, metadata map[string]any) *PaymentInitiationResult {
	return &PaymentInitiationResult{
		Status:           InitiationRedirect,
		Reference:        reference,
		AuthorizationURL: authorizationURL,
		AccessCode:       accessCode,
		Metadata:         metadata,
	}
}

func CryptoInitiation(reference, walletAddress string, cryptoAmount float64, cryptoCurrency, qrCode string, expiresAt time.Time, metadata map[string]any) *PaymentInitiationResult {
	return &PaymentInitiationResult{
		Status:         InitiationCrypto,
		Reference:      reference,
		WalletAddress:  walletAddress,
		CryptoAmount:   cryptoAmount,
		CryptoCurrency: cryptoCurrency,
		QRCode:         qrCode,
		ExpiresAt:      &expiresAt,
		Metadata:       metadata,
	}
}

/* =========================================================
   Verification
========================================================= */

type VerificationStatus string

const (
	VerificationSuccess VerificationStatus = "success"
	VerificationPending VerificationStatus = "pending"
	VerificationFailed  VerificationStatus = "failed"
)

type PaymentVerificationResult struct {
	Status           VerificationStatus `json:"status"`
	Reference        string             `json:"reference"`
	Message          string             `json:"message,omitempty"`
	Amount           float64            `json:"amount,omitempty"`
	Currency         string             `json:"currency,omitempty"`
	GatewayReference string             `json:"gateway_reference,omitempty"`
	PaymentMethod    string             `json:"payment_method,omitempty"`
	Channel          string             `json:"channel,omitempty"`
	GatewayFee       float64            `json:"gateway_fee,omitempty"`
	PaidAt           *time.Time         `json:"paid_at,omitempty"`
	Raw              map[string]any     `json:"raw,omitempty"`
}

func SuccessVerification(reference string, amount float64, currency, gatewayReference, paymentMethod string, raw map[string]any) *PaymentVerificationResult {
	return &PaymentVerificationResult{
		Status:           VerificationSuccess,
		Reference:        reference,
		Amount:           amount,
		Currency:         currency,
		GatewayReference: gatewayReference,
		PaymentMethod:    paymentMethod,
		Raw:              raw,
	}
}

func PendingVerification(reference, message string, raw map[string]any) *PaymentVerificationResult {
	return &PaymentVerificationResult{
		Status:    VerificationPending,
		Reference: reference,
		Message:   message,
		Raw:       raw,
	}
}

func FailedVerification(reference, message string, raw map[string]any) *PaymentVerificationResult {
	return &PaymentVerificationResult{
		Status:    VerificationFailed,
		Reference: reference,
		Message:   message,
		Raw:       raw,
	}
}

/* =========================================================
   Refund
========================================================= */

type RefundStatus string

const (
	RefundSuccess RefundStatus = "success"
	RefundFailed  RefundStatus = "failed"
)

type RefundResult struct {
	Status          RefundStatus   `json:"status"`
	Reference       string         `json:"reference,omitempty"`
	Message         string         `json:"message,omitempty"`
	Amount          float64        `json:"amount,omitempty"`
	Currency        string         `json:"currency,omitempty"`
	RefundReference string         `json:"refund_reference,omitempty"`
	Raw             map[string]any `json:"raw,omitempty"`
}

func SuccessRefund(reference string, amount float64, currency, refundReference string, raw map[string]any) *RefundResult {
	return &RefundResult{
		Status:          RefundSuccess,
		Reference:       reference,
		Amount:          amount,
		Currency:        currency,
		RefundReference: refundReference,
		Raw:             raw,
	}
}

func FailedRefund(reference, message string, raw map[string]any) *RefundResult {
	return &RefundResult{
		Status:    RefundFailed,
		Reference: reference,
		Message:   message,
		Raw:       raw,
	}
}

/* =========================================================
   Webhook event (normalized)
========================================================= */

type WebhookStatus string

const (
	WebhookStatusSuccess WebhookStatus = "success"
	WebhookStatusFailed  WebhookStatus = "failed"
	WebhookStatusPending WebhookStatus = "pending"
	WebhookStatusUnknown WebhookStatus = "unknown"
)

// WebhookEvent adalah bentuk normal notifikasi inbound dari provider.
// Raw menyimpan payload asli apa adanya untuk audit/debug.
type WebhookEvent struct {
	Type             string         `json:"type"`
	Reference        string         `json:"reference"`
	Status           WebhookStatus  `json:"status"`
	Amount           *float64       `json:"amount,omitempty"`
	Currency         string         `json:"currency,omitempty"`
	GatewayReference string         `json:"gateway_reference,omitempty"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	GatewayFee       *float64       `json:"gateway_fee,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	Raw              map[string]any `json:"raw,omitempty"`
}
