package models

import (
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/utils"
)

type OrderStatus string

const (
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusArrived        OrderStatus = "arrived"
	StatusCompleted      OrderStatus = "completed"
	// StatusCancelled is displayed by clients but no transition produces it yet.
	StatusCancelled OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCard || p == PaymentCash
}

type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// Order is the view of an order for one requesting user. NextStatuses lists
// what that user may move the order to.
type Order struct {
	ID              int64             `json:"id"`
	UserID          string            `json:"user_id"`
	DriverID        *string           `json:"driver_id,omitempty"`
	Status          OrderStatus       `json:"status"`
	TotalAmount     int64             `json:"total_amount"`
	RentedGallons   int               `json:"rented_gallons"`
	ShippingAddress string            `json:"shipping_address"`
	PaymentMethod   PaymentMethod     `json:"payment_method"`
	Items           []LineItem        `json:"order_items"`
	NextStatuses    []OrderStatus     `json:"next_statuses"`
	CreatedAt       utils.RFC3339Date `json:"created_at"`
	UpdatedAt       utils.RFC3339Date `json:"updated_at"`
}

// OrderUpdate is the partial change broadcast to order observers.
type OrderUpdate struct {
	OrderID    int64        `json:"id"`
	Status     *OrderStatus `json:"status,omitempty"`
	PrevStatus *OrderStatus `json:"prev_status,omitempty"`
	DriverID   *string      `json:"driver_id,omitempty"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Apply merges a partial update into the order. Fields absent from the
// update keep their local values.
func (o *Order) Apply(u OrderUpdate) bool {
	if u.OrderID != o.ID {
		return false
	}
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.DriverID != nil {
		driverID := *u.DriverID
		o.DriverID = &driverID
	}
	if !u.UpdatedAt.IsZero() {
		o.UpdatedAt = utils.RFC3339Date{Time: u.UpdatedAt}
	}
	return true
}

// TransitionRequest is the body of a status change call.
type TransitionRequest struct {
	Status *OrderStatus `json:"status"`
}

type StatusHistoryEntry struct {
	From      *OrderStatus      `json:"from,omitempty"`
	To        OrderStatus       `json:"to"`
	ActorID   string            `json:"actor_id,omitempty"`
	ChangedAt utils.RFC3339Date `json:"changed_at"`
}
