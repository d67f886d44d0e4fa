// file: internals/features/payment/order/service/recorder.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tokoku_backend/internals/features/payment/gateway"
	model "tokoku_backend/internals/features/payment/order/model"
)

/* =========================================================
   Recorder: terjemahkan hasil gateway → row order_payments.
   Upsert idempotent keyed by reference — webhook provider
   at-least-once, apply berulang harus aman.
========================================================= */

var ErrPaymentNotFound = errors.New("payment not found for reference")

type Recorder struct {
	DB *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{DB: db}
}

// RecordInitiation menyimpan payment attempt setelah initiate sukses
// (varian redirect / crypto). Initiate ulang untuk order yang sama
// memakai reference yang sama → update row yang ada, bukan duplikat.
func (r *Recorder) RecordInitiation(ctx context.Context, order *model.Order, provider string, res *gateway.PaymentInitiationResult) (*model.OrderPayment, error) {
	if res.Status == gateway.InitiationFailed {
		return nil, nil
	}

	var payment model.OrderPayment
	err := r.DB.WithContext(ctx).
		Where("order_payment_reference = ? AND order_payment_deleted_at IS NULL", res.Reference).
		First(&payment).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	payment.OrderPaymentOrderID = order.OrderID
	payment.OrderPaymentReference = res.Reference
	payment.OrderPaymentAmount = order.OrderTotalAmount
	payment.OrderPaymentCurrency = order.OrderCurrency
	payment.OrderPaymentProvider = provider
	payment.OrderPaymentStatus = model.OrderPaymentStatusPending
	payment.OrderPaymentUpdatedAt = time.Now()

	// payment_id provider (crypto) disimpan sebagai gateway reference
	// supaya verify/refund tidak perlu parse metadata lagi
	if res.Metadata != nil {
		if id, ok := res.Metadata["payment_id"].(string); ok && id != "" {
			payment.OrderPaymentGatewayReference = &id
		}
		if no, ok := res.Metadata["order_no"].(string); ok && no != "" {
			payment.OrderPaymentGatewayReference = &no
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.DB.WithContext(ctx).Create(&payment).Error; err != nil {
			return nil, err
		}
		return &payment, nil
	}
	if err := r.DB.WithContext(ctx).Save(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ApplyVerification menerapkan hasil verify ke payment.
// Dipanggil berulang untuk reference sama = hasil sama (idempotent).
func (r *Recorder) ApplyVerification(ctx context.Context, v *gateway.PaymentVerificationResult) (*model.OrderPayment, error) {
	var payment model.OrderPayment
	if err := r.DB.WithContext(ctx).
		Where("order_payment_reference = ? AND order_payment_deleted_at IS NULL", v.Reference).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	now := time.Now()
	changed := false

	switch v.Status {
	case gateway.VerificationSuccess:
		if payment.OrderPaymentStatus != model.OrderPaymentStatusPaid {
			payment.OrderPaymentStatus = model.OrderPaymentStatusPaid
			if v.PaidAt != nil {
				payment.OrderPaymentPaidAt = v.PaidAt
			} else {
				payment.OrderPaymentPaidAt = &now
			}
			changed = true
		}
		if v.GatewayReference != "" {
			ref := v.GatewayReference
			payment.OrderPaymentGatewayReference = &ref
			changed = true
		}
		if v.PaymentMethod != "" {
			m := v.PaymentMethod
			payment.OrderPaymentMethod = &m
			changed = true
		}
		if v.Channel != "" {
			ch := v.Channel
			payment.OrderPaymentChannel = &ch
			changed = true
		}
		if v.GatewayFee > 0 {
			fee := v.GatewayFee
			payment.OrderPaymentGatewayFee = &fee
			changed = true
		}
	case gateway.VerificationFailed:
		// jangan turunkan payment yang sudah paid
		if payment.OrderPaymentStatus == model.OrderPaymentStatusPending {
			payment.OrderPaymentStatus = model.OrderPaymentStatusFailed
			changed = true
		}
	case gateway.VerificationPending:
		// no-op: tunggu poll berikutnya / webhook
	}

	if v.Raw != nil {
		if raw, err := json.Marshal(v.Raw); err == nil {
			payment.OrderPaymentRaw = datatypes.JSON(raw)
			changed = true
		}
	}

	if changed {
		payment.OrderPaymentUpdatedAt = now
		if err := r.DB.WithContext(ctx).Save(&payment).Error; err != nil {
			return nil, err
		}
	}
	return &payment, nil
}

// ApplyWebhook menerapkan event webhook ternormalisasi.
func (r *Recorder) ApplyWebhook(ctx context.Context, ev *gateway.WebhookEvent) (*model.OrderPayment, error) {
	var payment model.OrderPayment
	if err := r.DB.WithContext(ctx).
		Where("order_payment_reference = ? AND order_payment_deleted_at IS NULL", ev.Reference).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	now := time.Now()
	changed := false

	switch ev.Status {
	case gateway.WebhookStatusSuccess:
		if payment.OrderPaymentStatus != model.OrderPaymentStatusPaid {
			payment.OrderPaymentStatus = model.OrderPaymentStatusPaid
			if ev.PaidAt != nil {
				payment.OrderPaymentPaidAt = ev.PaidAt
			} else {
				payment.OrderPaymentPaidAt = &now
			}
			changed = true
		}
	case gateway.WebhookStatusFailed:
		if payment.OrderPaymentStatus == model.OrderPaymentStatusPending {
			payment.OrderPaymentStatus = model.OrderPaymentStatusFailed
			changed = true
		}
	case gateway.WebhookStatusPending, gateway.WebhookStatusUnknown:
		// unknown tidak mengubah status — cukup tercatat di event log
	}

	if ev.GatewayReference != "" {
		ref := ev.GatewayReference
		payment.OrderPaymentGatewayReference = &ref
		changed = true
	}
	if ev.GatewayFee != nil {
		payment.OrderPaymentGatewayFee = ev.GatewayFee
		changed = true
	}
	if ev.Raw != nil {
		if raw, err := json.Marshal(ev.Raw); err == nil {
			payment.OrderPaymentRaw = datatypes.JSON(raw)
			changed = true
		}
	}

	if changed {
		payment.OrderPaymentUpdatedAt = now
		if err := r.DB.WithContext(ctx).Save(&payment).Error; err != nil {
			return nil, err
		}
	}
	return &payment, nil
}

// ApplyRefund menerapkan hasil refund sukses ke payment.
func (r *Recorder) ApplyRefund(ctx context.Context, payment *model.OrderPayment, res *gateway.RefundResult) error {
	if res.Status != gateway.RefundSuccess {
		return nil
	}
	now := time.Now()
	payment.OrderPaymentRefundedAmount += res.Amount
	if payment.OrderPaymentRefundedAmount >= payment.OrderPaymentAmount {
		payment.OrderPaymentStatus = model.OrderPaymentStatusRefunded
	} else {
		payment.OrderPaymentStatus = model.OrderPaymentStatusPartiallyRefunded
	}
	payment.OrderPaymentRefundedAt = &now
	payment.OrderPaymentUpdatedAt = now
	if res.Raw != nil {
		if raw, err := json.Marshal(res.Raw); err == nil {
			payment.OrderPaymentRaw = datatypes.JSON(raw)
		}
	}
	return r.DB.WithContext(ctx).Save(payment).Error
}

/* =========================================================
   Gateway event log (audit webhook)
========================================================= */

type GatewayEventInput struct {
	Provider  string
	Signature string
	Headers   map[string][]string
	Payload   []byte
	Event     *gateway.WebhookEvent
	Payment   *model.OrderPayment
	Status    model.GatewayEventStatus
	Error     string
}

func (r *Recorder) LogGatewayEvent(ctx context.Context, in GatewayEventInput) error {
	row := model.PaymentGatewayEventModel{
		GatewayEventProvider:   in.Provider,
		GatewayEventStatus:     in.Status,
		GatewayEventReceivedAt: time.Now(),
	}

	if in.Signature != "" {
		sig := in.Signature
		row.GatewayEventSignature = &sig
	}
	if in.Error != "" {
		e := in.Error
		row.GatewayEventError = &e
	}
	if len(in.Payload) > 0 && json.Valid(in.Payload) {
		row.GatewayEventPayload = datatypes.JSON(in.Payload)
	}
	if in.Headers != nil {
		if hs, err := json.Marshal(in.Headers); err == nil {
			row.GatewayEventHeaders = datatypes.JSON(hs)
		}
	}
	if in.Event != nil {
		t := in.Event.Type
		ref := in.Event.Reference
		st := string(in.Event.Status)
		row.GatewayEventType = &t
		row.GatewayEventReference = &ref
		row.GatewayEventNormalizedStatus = &st
	}
	if in.Payment != nil {
		id := in.Payment.OrderPaymentID
		row.GatewayEventPaymentID = &id
		if in.Payment.Order != nil {
			tid := in.Payment.Order.OrderTenantID
			row.GatewayEventTenantID = &tid
		}
	}
	if in.Status == model.GatewayEventStatusProcessed {
		now := time.Now()
		row.GatewayEventProcessedAt = &now
	}

	return r.DB.WithContext(ctx).Create(&row).Error
}
