package controllers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/claridapp/clarid/app/repository"
	"github.com/claridapp/clarid/internal/pkg/usercontext"
)

// UserController serves account and report endpoints for the authenticated
// user.
type UserController struct {
	users    repository.UserRepository
	analyses repository.AnalysisRepository
}

// NewUserController creates a user controller from injected repositories.
func NewUserController(users repository.UserRepository, analyses repository.AnalysisRepository) *UserController {
	return &UserController{users: users, analyses: analyses}
}

// HandleGetCredits returns the current balance, usage counter and tier.
func (uc *UserController) HandleGetCredits(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := uc.users.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	return c.JSON(fiber.Map{
		"credits":      user.Credits,
		"credits_used": user.CreditsUsed,
		"tier":         user.Tier,
	})
}

// HandleListAnalyses returns the user's saved reports, newest first.
func (uc *UserController) HandleListAnalyses(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	const pageSize = 20

	analyses, err := uc.analyses.GetByUserID(userCtx.UserID, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load analyses"})
	}
	total, err := uc.analyses.CountByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load analyses"})
	}

	return c.JSON(fiber.Map{
		"analyses": analyses,
		"page":     page,
		"total":    total,
	})
}

// HandleGetAnalysis returns one saved report, including the full payload.
func (uc *UserController) HandleGetAnalysis(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	analysis, err := uc.analyses.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Analysis not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load analysis"})
	}
	if analysis.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Analysis not found"})
	}

	var report json.RawMessage
	if analysis.ReportJSON != "" {
		report = json.RawMessage(analysis.ReportJSON)
	}

	return c.JSON(fiber.Map{
		"analysis": analysis,
		"report":   report,
	})
}
