package models

import "time"

const (
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// CreditTransaction is the append-only audit record for every routed webhook
// delivery. OrderKey carries the provider order id (prefixed for refunds) and
// is unique, which makes the insert itself the idempotency check.
type CreditTransaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        *uint     `gorm:"index" json:"user_id,omitempty"`
	OrderKey      string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_credit_transactions_order_key" json:"order_key"`
	ProductID     string    `gorm:"type:varchar(191);not null" json:"product_id"`
	ProductName   string    `gorm:"type:varchar(255)" json:"product_name"`
	Amount        float64   `json:"amount"`
	EventType     string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	Status        string    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreditsDelta  int       `gorm:"not null;default:0" json:"credits_delta"`
	CustomerEmail string    `gorm:"type:varchar(200);index" json:"customer_email"`
	RawPayload    string    `gorm:"type:longtext;not null" json:"raw_payload"`
	ResultMessage string    `gorm:"type:text" json:"result_message"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
