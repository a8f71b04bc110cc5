package models

import "time"

// Analysis stores one generated viability report. The full structured report
// is kept as raw JSON next to a few extracted columns for listing.
type Analysis struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       string    `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Query      string    `gorm:"type:text;not null" json:"query"`
	ModelUsed  string    `gorm:"type:varchar(100);not null" json:"model_used"`
	Score      int       `gorm:"not null;default:0" json:"score"`
	ReportJSON string    `gorm:"type:longtext;not null" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
