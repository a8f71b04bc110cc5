package payments

import (
	"encoding/json"
	"errors"
	"strings"
)

// Kiwify event kinds routed by the service. The provider may introduce new
// kinds at any time; anything not listed here is accepted and ignored.
const (
	EventPurchaseApproved      = "purchase_approved"
	EventOrderPaid             = "order_paid"
	EventSubscriptionActivated = "subscription_activated"
	EventSubscriptionRenewed   = "subscription_renewed"
	EventSubscriptionCancelled = "subscription_cancelled"
	EventSubscriptionExpired   = "subscription_expired"
	EventRefundRequested       = "refund_requested"
	EventChargeback            = "chargeback"
)

// EventClass is the closed set of handler routes for an event kind.
type EventClass int

const (
	ClassUnknown EventClass = iota
	ClassPurchase
	ClassSubscriptionActivate
	ClassSubscriptionCancel
	ClassRefund
)

// Customer identifies the paying customer. Email is the reconciliation key
// against local accounts and is matched case-insensitively.
type Customer struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Product describes the purchased item as the provider reports it.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Payment carries provider-side payment details. Passed through to the audit
// trail, never interpreted.
type Payment struct {
	Method       string `json:"method"`
	Status       string `json:"status"`
	Installments int    `json:"installments,omitempty"`
}

// Event is the typed webhook envelope.
type Event struct {
	Event          string   `json:"event"`
	OrderID        string   `json:"order_id"`
	Customer       Customer `json:"customer"`
	Product        Product  `json:"product"`
	Payment        Payment  `json:"payment"`
	SubscriptionID string   `json:"subscription_id,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

// ParseEvent decodes and validates a raw webhook body.
func ParseEvent(raw []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ev.Event) == "" {
		return nil, errors.New("event kind is required")
	}
	if strings.TrimSpace(ev.OrderID) == "" {
		return nil, errors.New("order_id is required")
	}
	if strings.TrimSpace(ev.Customer.Email) == "" {
		return nil, errors.New("customer email is required")
	}
	return &ev, nil
}

// Class maps the event kind onto its handler route. Unrecognized kinds map to
// ClassUnknown and are treated as a successful no-op by the service.
func (e *Event) Class() EventClass {
	switch strings.ToLower(strings.TrimSpace(e.Event)) {
	case EventPurchaseApproved, EventOrderPaid:
		return ClassPurchase
	case EventSubscriptionActivated, EventSubscriptionRenewed:
		return ClassSubscriptionActivate
	case EventSubscriptionCancelled, EventSubscriptionExpired:
		return ClassSubscriptionCancel
	case EventRefundRequested, EventChargeback:
		return ClassRefund
	default:
		return ClassUnknown
	}
}

// Result is the structured outcome returned for every routed event. Declared
// business failures (pending account, update rejected) set Success=false but
// still travel back as a normal response body.
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
