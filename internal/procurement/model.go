package procurement

import "time"

// PurchaseOrder is an order placed with a vendor. Numbers are unique; the
// database index decides ties. Total is derived from quantity and unit cost.
type PurchaseOrder struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	VendorID    int64     `json:"vendor_id"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	UnitCost    int64     `json:"unit_cost"`
	TotalCost   int64     `json:"total_cost"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Total computes the derived order total in integer cents.
func (po PurchaseOrder) Total() int64 {
	return int64(po.Quantity) * po.UnitCost
}

// CreateOrderRequest carries the payload for raising a purchase order.
type CreateOrderRequest struct {
	Number      string `json:"number" validate:"required,max=32"`
	VendorID    int64  `json:"vendor_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,max=500"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	UnitCost    int64  `json:"unit_cost" validate:"required,gt=0"`
}

// UpdateOrderRequest carries a partial update; nil fields are left untouched.
type UpdateOrderRequest struct {
	Description *string `json:"description" validate:"omitempty,max=500"`
	Quantity    *int    `json:"quantity" validate:"omitempty,gt=0"`
	UnitCost    *int64  `json:"unit_cost" validate:"omitempty,gt=0"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft submitted received cancelled"`
}

// Filter narrows purchase order listings.
type Filter struct {
	VendorID int64
	Status   string
}

// allowedTransitions maps a status to the statuses it may move to.
var allowedTransitions = map[string][]string{
	"draft":     {"submitted", "cancelled"},
	"submitted": {"received", "cancelled"},
	"received":  {},
	"cancelled": {},
}

func canTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return from == to
}
