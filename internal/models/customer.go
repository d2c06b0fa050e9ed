package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CustomerStatusNew    = "new"
	InterestStatusOpen   = "interested"
	InterestStatusClosed = "closed"
)

// Customer is a CRM record created the first time a caller discloses a name.
// Names are matched case-insensitively, so "Juan" and "juan" are one customer.
type Customer struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"column:name;type:text;not null;uniqueIndex" json:"name"`
	FirstContactAt time.Time `gorm:"column:first_contact_at;index" json:"first_contact_at"`
	LastContactAt  time.Time `gorm:"column:last_contact_at;index" json:"last_contact_at"`
	TotalInquiries int       `gorm:"column:total_inquiries" json:"total_inquiries"`
	Status         string    `gorm:"column:status;type:text;default:new" json:"status"`
}

func (Customer) TableName() string { return "customers" }

// InterestEvent is an append-only record of a customer asking about a product.
// Rate and days are optional: keyword detection records interest without them.
type InterestEvent struct {
	ID             uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CustomerID     uint           `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Product        string         `gorm:"column:product;type:text;not null;index" json:"product"`
	DailyRateCents *int64         `gorm:"column:daily_rate_cents" json:"daily_rate_cents,omitempty"`
	RentalDays     *int           `gorm:"column:rental_days" json:"rental_days,omitempty"`
	Quote          datatypes.JSON `gorm:"column:quote" json:"quote,omitempty"` // snapshot of the quote shown, if any
	Status         string         `gorm:"column:status;type:text;default:interested" json:"status"`
	CreatedAt      time.Time      `gorm:"column:created_at;index" json:"created_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (InterestEvent) TableName() string { return "interest_events" }

// ConversationRecord stores one committed exchange for a bound customer.
type ConversationRecord struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CustomerID     uint      `gorm:"column:customer_id;not null;index" json:"customer_id"`
	SessionID      string    `gorm:"column:session_id;type:text;index" json:"session_id"`
	UserMessage    string    `gorm:"column:user_message;type:text" json:"user_message"`
	AssistantReply string    `gorm:"column:assistant_reply;type:text" json:"assistant_reply"`
	TokensUsed     int       `gorm:"column:tokens_used" json:"tokens_used"`
	CostUSD        float64   `gorm:"column:cost_usd" json:"cost_usd"`
	CreatedAt      time.Time `gorm:"column:created_at;index" json:"created_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ConversationRecord) TableName() string { return "conversation_records" }

// StockItem is one rentable equipment line. Key is the lowercase token
// matched by containment against what the caller asked for.
type StockItem struct {
	ID              uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Key             string     `gorm:"column:key;type:text;not null;uniqueIndex" json:"key"`
	Name            string     `gorm:"column:name;type:text;not null" json:"name"`
	Units           int        `gorm:"column:units" json:"units"`
	NextAvailableAt *time.Time `gorm:"column:next_available_at" json:"next_available_at,omitempty"`
}

func (StockItem) TableName() string { return "stock_items" }

// Dashboard aggregates.

type ProductCount struct {
	Product   string `json:"product"`
	Inquiries int    `json:"inquiries"`
}

type CustomerActivity struct {
	Name          string    `json:"name"`
	Inquiries     int       `json:"inquiries"`
	LastContactAt time.Time `json:"last_contact_at"`
}

type CRMDashboard struct {
	TotalCustomers      int                `json:"total_customers"`
	NewCustomers24h     int                `json:"new_customers_24h"`
	TotalInterestEvents int                `json:"total_interest_events"`
	TopProducts         []ProductCount     `json:"top_products"`
	RecentCustomers     []CustomerActivity `json:"recent_customers"`
	HotLeads            []CustomerActivity `json:"hot_leads"`
}

// CustomerDetail is one customer with their recorded activity.
type CustomerDetail struct {
	Customer      Customer             `json:"customer"`
	Interests     []InterestEvent      `json:"interests"`
	Conversations []ConversationRecord `json:"conversations"`
}
