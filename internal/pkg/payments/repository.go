package payments

import (
	"strings"

	"github.com/claridapp/clarid/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payments service.
type Repository interface {
	CreateTransactionIfNotExists(tx *models.CreditTransaction) (bool, error)
	DeleteTransaction(orderKey string) error
	FindUserByEmail(email string) (*models.User, error)
	SetSubscriptionID(userID uint, subscriptionID string) error
	ClearSubscription(userID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateTransactionIfNotExists inserts the audit row unless one already
// exists for the same order key. The unique index on order_key makes this
// insert the idempotency gate: a conflicting insert affects zero rows and is
// reported as created=false, never as an error.
func (r *gormRepository) CreateTransactionIfNotExists(tx *models.CreditTransaction) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_key"}},
		DoNothing: true,
	}).Create(tx)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteTransaction removes a reservation row whose balance update failed, so
// the provider's retry can be processed instead of reading as a duplicate.
func (r *gormRepository) DeleteTransaction(orderKey string) error {
	return r.db.Where("order_key = ?", orderKey).Delete(&models.CreditTransaction{}).Error
}

func (r *gormRepository) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) SetSubscriptionID(userID uint, subscriptionID string) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("subscription_id", subscriptionID).Error
}

// ClearSubscription downgrades the account to the free tier and forgets the
// provider subscription id.
func (r *gormRepository) ClearSubscription(userID uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"tier":            models.TierFree,
			"subscription_id": "",
		}).Error
}
