package repository

import (
	"github.com/claridapp/clarid/app/models"
	"gorm.io/gorm"
)

// analysisRepository implements the AnalysisRepository interface
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository instance
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create stores a generated report
func (r *analysisRepository) Create(analysis *models.Analysis) error {
	return r.db.Create(analysis).Error
}

// GetByUUID retrieves an analysis by its public UUID
func (r *analysisRepository) GetByUUID(uuid string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.Where("uuid = ?", uuid).First(&analysis).Error
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetByUserID lists a user's analyses, newest first
func (r *analysisRepository) GetByUserID(userID uint, offset, limit int) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&analyses).Error
	return analyses, err
}

// CountByUserID returns the number of analyses a user has generated
func (r *analysisRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Analysis{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
