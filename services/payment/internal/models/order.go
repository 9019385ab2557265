package models

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/Skotchmaster/kicks_premium/pkg/db"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// LineItem is one purchased line as recorded at checkout time.
type LineItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
	Price int64  `json:"price"`
	Qty   int    `json:"qty"`
	Size  string `json:"size,omitempty"`
	Img   string `json:"img,omitempty"`
}

type Items []LineItem

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		return "[]", nil
	}
	return db.JSONValue([]LineItem(it))
}

func (it *Items) Scan(src any) error {
	return db.ScanJSON(src, it)
}

func (Items) GormDBDataType(gdb *gorm.DB, field *schema.Field) string {
	return db.JSONColumnType(gdb)
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

func (a Address) IsZero() bool { return a == Address{} }

// Value stores an empty address as NULL.
func (a Address) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	return db.JSONValue(a)
}

func (a *Address) Scan(src any) error {
	return db.ScanJSON(src, a)
}

func (Address) GormDBDataType(gdb *gorm.DB, field *schema.Field) string {
	return db.JSONColumnType(gdb)
}

// Order amounts are integer minor units. A completed order is unique per
// checkout session; a failed-payment record is unique per Stripe event.
type Order struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	UserID                uuid.UUID `gorm:"type:uuid;index;not null"  json:"user_id"`
	StripeSessionID       *string   `gorm:"uniqueIndex"               json:"stripe_session_id,omitempty"`
	StripeEventID         *string   `gorm:"uniqueIndex"               json:"-"`
	StripePaymentIntentID string    `gorm:"index"                     json:"stripe_payment_intent_id,omitempty"`
	TotalAmount           int64     `gorm:"not null"                  json:"total_amount"`
	Currency              string    `json:"currency"`
	Status                string    `gorm:"not null;index"            json:"status"`
	ShippingName          string    `json:"shipping_name,omitempty"`
	ShippingAddress       Address   `json:"shipping_address"`
	ShippingPhone         string    `json:"shipping_phone,omitempty"`
	BillingEmail          string    `json:"billing_email,omitempty"`
	Items                 Items     `gorm:"not null"                  json:"items"`
	NeedsReview           bool      `gorm:"not null"                  json:"needs_review"`
	ReviewNotes           string    `json:"review_notes,omitempty"`
	CreatedAt             time.Time `gorm:"index"                     json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// ShortID is the customer-facing order reference.
func (o *Order) ShortID() string {
	s := o.ID.String()
	if len(s) > 8 {
		s = s[:8]
	}
	return strings.ToUpper(s)
}
