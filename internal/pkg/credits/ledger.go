package credits

import (
	"context"
	"errors"

	"github.com/claridapp/clarid/app/models"
	"gorm.io/gorm"
)

// Ledger mutates user credit balances through store-level atomic updates.
// Every mutation is a single conditional UPDATE so that concurrent spend,
// purchase and refund flows against the same account cannot lose updates.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a ledger from an injected GORM DB handle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Debit spends exactly one credit for the given user. It returns false (not
// an error) when the user has no credits left; two concurrent debits against
// a single remaining credit can never both succeed, because the balance
// check and the decrement are one UPDATE statement.
func (l *Ledger) Debit(ctx context.Context, userID uint) (bool, error) {
	if userID == 0 {
		return false, errors.New("user_id is required")
	}

	tx := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND credits > 0", userID).
		Updates(map[string]interface{}{
			"credits":      gorm.Expr("credits - 1"),
			"credits_used": gorm.Expr("credits_used + 1"),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// Credit adds amount to the user's balance, floored at zero. A negative
// amount subtracts. When tierOverride is non-empty the tier is overwritten
// in the same statement. The new balance is read back after the update.
func (l *Ledger) Credit(ctx context.Context, userID uint, amount int, tierOverride string) (int, error) {
	if userID == 0 {
		return 0, errors.New("user_id is required")
	}

	updates := map[string]interface{}{
		// CASE instead of GREATEST so the expression works on MySQL and the
		// SQLite test driver alike.
		"credits": gorm.Expr("CASE WHEN credits + ? < 0 THEN 0 ELSE credits + ? END", amount, amount),
	}
	if tierOverride != "" {
		updates["tier"] = tierOverride
	}

	tx := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var balance int
	err := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Pluck("credits", &balance).Error
	return balance, err
}
