package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/claridapp/clarid/app/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Analysis{}))
	return db
}

func TestUserRepositoryNormalizesEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	user := &models.User{
		Name: "Maria Silva", Email: "  Maria@Example.COM  ", Password: "hashed",
		Status: models.STATUS_ACTIVE, Credits: 3, Tier: models.TierFree,
	}
	require.NoError(t, repo.Create(user))
	assert.Equal(t, "maria@example.com", user.Email)

	// Lookup matches regardless of the casing the caller uses.
	got, err := repo.GetByEmail("MARIA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserRepositoryGetByEmailNotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	_, err := repo.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := &models.User{
		Name: "Maria Silva", Email: "maria@example.com", Password: "hashed",
		Status: models.STATUS_ACTIVE, Credits: 3, Tier: models.TierFree,
	}
	require.NoError(t, repo.Create(user))

	now := time.Now()
	user.LastLoginAt = &now
	user.Tier = models.TierPro
	require.NoError(t, repo.Update(user))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPro, got.Tier)
	require.NotNil(t, got.LastLoginAt)
}

func TestAnalysisRepositoryListsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepository(db)

	older := &models.Analysis{UUID: "a1", UserID: 1, Query: "ideia 1", ModelUsed: "m", ReportJSON: "{}", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Analysis{UUID: "a2", UserID: 1, Query: "ideia 2", ModelUsed: "m", ReportJSON: "{}", CreatedAt: time.Now()}
	other := &models.Analysis{UUID: "a3", UserID: 2, Query: "ideia 3", ModelUsed: "m", ReportJSON: "{}"}
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(newer))
	require.NoError(t, repo.Create(other))

	list, err := repo.GetByUserID(1, 0, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].UUID)
	assert.Equal(t, "a1", list[1].UUID)

	count, err := repo.CountByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestAnalysisRepositoryGetByUUID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepository(db)

	require.NoError(t, repo.Create(&models.Analysis{UUID: "a1", UserID: 1, Query: "ideia", ModelUsed: "m", ReportJSON: `{"score":{"total":50}}`}))

	got, err := repo.GetByUUID("a1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.UserID)

	_, err = repo.GetByUUID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
