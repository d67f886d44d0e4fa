// file: internals/features/payment/gateway/reference.go
package gateway

import (
	"fmt"
	"strings"

	orderModel "tokoku_backend/internals/features/payment/order/model"
)

// BuildReference menghasilkan reference merchant yang deterministik
// dari order: stabil di initiate → verify → webhook untuk order yg sama.
// Format: PAY-<order_number>-<8 hex pertama order_id>.
func BuildReference(order *orderModel.Order) string {
	short := strings.ReplaceAll(order.OrderID.String(), "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	number := strings.ToUpper(strings.TrimSpace(order.OrderNumber))
	return fmt.Sprintf("PAY-%s-%s", number, short)
}
