package payments

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/claridapp/clarid/app/models"
	"github.com/claridapp/clarid/internal/pkg/credits"
	"gorm.io/gorm"
)

const msgAlreadyProcessed = "Pedido já processado anteriormente"

// Service routes verified webhook events to their handlers and keeps the
// credit transaction audit trail.
type Service struct {
	repo   Repository
	ledger *credits.Ledger
}

// NewService creates a payments service from injected dependencies.
func NewService(repo Repository, ledger *credits.Ledger) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// NewServiceFromDB creates a payments service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), credits.NewLedger(db))
}

// Process dispatches one verified event. It always returns a Result; errors
// that the provider should not retry (business declines, missing accounts)
// come back as declared failures inside the Result.
func (s *Service) Process(ctx context.Context, ev *Event, raw []byte) Result {
	switch ev.Class() {
	case ClassPurchase:
		return s.handlePurchase(ctx, ev, raw)
	case ClassSubscriptionActivate:
		return s.handleSubscriptionActivate(ctx, ev, raw)
	case ClassSubscriptionCancel:
		return s.handleSubscriptionCancel(ctx, ev, raw)
	case ClassRefund:
		return s.handleRefund(ctx, ev, raw)
	default:
		return s.handleUnknown(ev, raw)
	}
}

// handlePurchase grants the product's credits to the account matching the
// customer email. The audit row insert doubles as the idempotency gate:
// redelivery of an already-recorded order id conflicts on the unique order
// key and is answered as already-processed without touching the balance.
func (s *Service) handlePurchase(ctx context.Context, ev *Event, raw []byte) Result {
	_ = ctx
	rule := RuleForProduct(ev.Product.ID)

	user, err := s.repo.FindUserByEmail(ev.Customer.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("purchase %s: account lookup failed: %v", ev.OrderID, err)
		return Result{Success: false, Message: "Erro ao adicionar créditos"}
	}

	if user == nil {
		// Payment can precede account creation; record the intent for manual
		// reconciliation and do not create or mutate anything.
		res := Result{
			Success: false,
			Message: fmt.Sprintf("Usuário %s não encontrado. Créditos serão adicionados quando criar conta.", ev.Customer.Email),
			Data: map[string]interface{}{
				"pending": true,
				"email":   ev.Customer.Email,
				"credits": rule.Credits,
			},
		}
		created, recErr := s.record(ev, raw, ev.OrderID, nil, 0, models.TransactionStatusFailed, res.Message)
		if recErr == nil && !created {
			return Result{Success: true, Message: msgAlreadyProcessed}
		}
		return res
	}

	row := s.auditRow(ev, raw, ev.OrderID, &user.ID, rule.Credits,
		models.TransactionStatusCompleted,
		fmt.Sprintf("%d créditos adicionados com sucesso", rule.Credits))
	created, err := s.repo.CreateTransactionIfNotExists(row)
	if err != nil {
		log.Printf("purchase %s: transaction insert failed: %v", ev.OrderID, err)
		return Result{Success: false, Message: "Erro ao adicionar créditos"}
	}
	if !created {
		return Result{Success: true, Message: msgAlreadyProcessed}
	}

	newBalance, err := s.ledger.Credit(ctx, user.ID, rule.Credits, rule.Tier)
	if err != nil {
		// Roll back the reservation so the provider's retry is processed
		// instead of reading as a duplicate.
		if delErr := s.repo.DeleteTransaction(row.OrderKey); delErr != nil {
			log.Printf("purchase %s: reservation rollback failed: %v", ev.OrderID, delErr)
		}
		log.Printf("purchase %s: credit update failed: %v", ev.OrderID, err)
		return Result{Success: false, Message: "Erro ao adicionar créditos"}
	}

	tier := rule.Tier
	if tier == "" {
		tier = user.Tier
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("%d créditos adicionados com sucesso", rule.Credits),
		Data: map[string]interface{}{
			"user_id":       user.ID,
			"credits_added": rule.Credits,
			"new_balance":   newBalance,
			"tier":          tier,
		},
	}
}

// handleSubscriptionActivate runs the full purchase procedure, then persists
// the provider subscription id for later cancellation correlation. The id is
// not persisted when the purchase step declared failure (pending account).
func (s *Service) handleSubscriptionActivate(ctx context.Context, ev *Event, raw []byte) Result {
	res := s.handlePurchase(ctx, ev, raw)

	if res.Success && ev.SubscriptionID != "" {
		user, err := s.repo.FindUserByEmail(ev.Customer.Email)
		if err == nil {
			if err := s.repo.SetSubscriptionID(user.ID, ev.SubscriptionID); err != nil {
				log.Printf("subscription %s: storing subscription id failed: %v", ev.OrderID, err)
			}
		}
	}

	return res
}

// handleSubscriptionCancel downgrades the account to free and clears the
// stored subscription id. Missing accounts and repeated cancellations are
// both success no-ops.
func (s *Service) handleSubscriptionCancel(ctx context.Context, ev *Event, raw []byte) Result {
	_ = ctx
	user, err := s.repo.FindUserByEmail(ev.Customer.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			res := Result{Success: true, Message: "Usuário não encontrado"}
			s.logBestEffort(ev, raw, "cancel:"+ev.OrderID, nil, 0, models.TransactionStatusCompleted, res.Message)
			return res
		}
		log.Printf("cancel %s: account lookup failed: %v", ev.OrderID, err)
		return Result{Success: false, Message: "Erro ao atualizar tier"}
	}

	if err := s.repo.ClearSubscription(user.ID); err != nil {
		log.Printf("cancel %s: downgrade failed: %v", ev.OrderID, err)
		return Result{Success: false, Message: "Erro ao atualizar tier"}
	}

	res := Result{
		Success: true,
		Message: "Assinatura cancelada, tier alterado para free",
		Data: map[string]interface{}{
			"user_id":  user.ID,
			"new_tier": models.TierFree,
		},
	}
	s.logBestEffort(ev, raw, "cancel:"+ev.OrderID, &user.ID, 0, models.TransactionStatusCompleted, res.Message)
	return res
}

// handleRefund subtracts the product's credits, floored at zero. Refunds are
// guarded by the same order-key gate as purchases, under a refund: prefix so
// the refund and its original purchase do not collide.
func (s *Service) handleRefund(ctx context.Context, ev *Event, raw []byte) Result {
	rule := RuleForProduct(ev.Product.ID)

	user, err := s.repo.FindUserByEmail(ev.Customer.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			res := Result{Success: true, Message: "Usuário não encontrado para reembolso"}
			s.logBestEffort(ev, raw, "refund:"+ev.OrderID, nil, 0, models.TransactionStatusCompleted, res.Message)
			return res
		}
		log.Printf("refund %s: account lookup failed: %v", ev.OrderID, err)
		return Result{Success: false, Message: "Erro ao processar reembolso"}
	}

	row := s.auditRow(ev, raw, "refund:"+ev.OrderID, &user.ID, -rule.Credits,
		models.TransactionStatusCompleted,
		fmt.Sprintf("Reembolso processado: %d créditos removidos", rule.Credits))
	created, err := s.repo.CreateTransactionIfNotExists(row)
	if err != nil {
		log.Printf("refund %s: transaction insert failed: %v", ev.OrderID, err)
		return Result{Success: false, Message: "Erro ao processar reembolso"}
	}
	if !created {
		return Result{Success: true, Message: msgAlreadyProcessed}
	}

	newBalance, err := s.ledger.Credit(ctx, user.ID, -rule.Credits, "")
	if err != nil {
		if delErr := s.repo.DeleteTransaction(row.OrderKey); delErr != nil {
			log.Printf("refund %s: reservation rollback failed: %v", ev.OrderID, delErr)
		}
		log.Printf("refund %s: balance update failed: %v", ev.OrderID, err)
		return Result{Success: false, Message: "Erro ao processar reembolso"}
	}

	// Refund of a subscription product implies cancellation.
	if rule.Tier != "" {
		if err := s.repo.ClearSubscription(user.ID); err != nil {
			log.Printf("refund %s: downgrade failed: %v", ev.OrderID, err)
		}
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("Reembolso processado: %d créditos removidos", rule.Credits),
		Data: map[string]interface{}{
			"user_id":         user.ID,
			"credits_removed": rule.Credits,
			"new_balance":     newBalance,
		},
	}
}

// handleUnknown accepts event kinds outside the routing table as successful
// no-ops; the provider may introduce new kinds at any time.
func (s *Service) handleUnknown(ev *Event, raw []byte) Result {
	res := Result{Success: true, Message: fmt.Sprintf("Evento %s ignorado", ev.Event)}
	s.logBestEffort(ev, raw, "ignored:"+ev.OrderID, nil, 0, models.TransactionStatusCompleted, res.Message)
	return res
}

func (s *Service) auditRow(ev *Event, raw []byte, orderKey string, userID *uint, delta int, status, message string) *models.CreditTransaction {
	return &models.CreditTransaction{
		UserID:        userID,
		OrderKey:      orderKey,
		ProductID:     ev.Product.ID,
		ProductName:   ev.Product.Name,
		Amount:        ev.Product.Price,
		EventType:     ev.Event,
		Status:        status,
		CreditsDelta:  delta,
		CustomerEmail: ev.Customer.Email,
		RawPayload:    string(raw),
		ResultMessage: message,
	}
}

// record inserts an audit row and reports whether it was newly created.
func (s *Service) record(ev *Event, raw []byte, orderKey string, userID *uint, delta int, status, message string) (bool, error) {
	created, err := s.repo.CreateTransactionIfNotExists(s.auditRow(ev, raw, orderKey, userID, delta, status, message))
	if err != nil {
		log.Printf("transaction log for %s failed: %v", orderKey, err)
	}
	return created, err
}

// logBestEffort writes an audit row for events whose processing does not
// depend on it; failures never change the already-computed result.
func (s *Service) logBestEffort(ev *Event, raw []byte, orderKey string, userID *uint, delta int, status, message string) {
	_, _ = s.record(ev, raw, orderKey, userID, delta, status, message)
}
