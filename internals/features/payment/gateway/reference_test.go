package gateway

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	orderModel "tokoku_backend/internals/features/payment/order/model"
)

func TestBuildReference(t *testing.T) {
	order := &orderModel.Order{
		OrderID:     uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000"),
		OrderNumber: "ord-1001",
	}

	ref := BuildReference(order)
	assert.Equal(t, "PAY-ORD-1001-a1b2c3d4", ref)

	// deterministik: order sama → reference sama
	assert.Equal(t, ref, BuildReference(order))
}

func TestBuildReferenceDiffersPerOrder(t *testing.T) {
	a := &orderModel.Order{OrderID: uuid.New(), OrderNumber: "A-1"}
	b := &orderModel.Order{OrderID: uuid.New(), OrderNumber: "A-1"}
	assert.NotEqual(t, BuildReference(a), BuildReference(b))
}
