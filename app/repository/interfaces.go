package repository

import (
	"github.com/claridapp/clarid/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Count() (int64, error)
}

// AnalysisRepository defines the interface for analysis-related database operations
type AnalysisRepository interface {
	Create(analysis *models.Analysis) error
	GetByUUID(uuid string) (*models.Analysis, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Analysis, error)
	CountByUserID(userID uint) (int64, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	User     UserRepository
	Analysis AnalysisRepository
}

// NewRepositories creates all repositories backed by the given DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Analysis: NewAnalysisRepository(db),
	}
}
