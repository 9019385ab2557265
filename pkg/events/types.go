package events

import "time"

const (
	TopicProducts = "product_events"
	TopicOrders   = "order_events"

	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"

	OrderCompleted = "order_completed"
	OrderFailed    = "order_failed"
)

type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"productID"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Brand      string    `json:"brand,omitempty"`
	Price      int64     `json:"price"`
	Image      string    `json:"image,omitempty"`
	IsActive   bool      `json:"is_active"`
	OccurredAt time.Time `json:"occurred_at"`
}

type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"orderID"`
	UserID      string    `json:"userID"`
	SessionID   string    `json:"sessionID,omitempty"`
	TotalAmount int64     `json:"total_amount"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}
