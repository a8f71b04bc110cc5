package controllers

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/claridapp/clarid/app/models"
	"github.com/claridapp/clarid/app/repository"
	"github.com/claridapp/clarid/internal/pkg/analyzer"
	"github.com/claridapp/clarid/internal/pkg/credits"
	"github.com/claridapp/clarid/internal/pkg/usercontext"
)

// AnalyzeController runs the credit-spend flow: debit one credit, generate a
// report, persist it. A generation failure after a successful debit does not
// restore the credit.
type AnalyzeController struct {
	ledger    *credits.Ledger
	generator analyzer.Generator
	users     repository.UserRepository
	analyses  repository.AnalysisRepository
}

// NewAnalyzeController creates an analyze controller from injected
// dependencies.
func NewAnalyzeController(ledger *credits.Ledger, generator analyzer.Generator, users repository.UserRepository, analyses repository.AnalysisRepository) *AnalyzeController {
	return &AnalyzeController{
		ledger:    ledger,
		generator: generator,
		users:     users,
		analyses:  analyses,
	}
}

type analyzeRequest struct {
	Query string `json:"query"`
}

// HandleAnalyze handles POST /api/v1/analyze for an authenticated user.
func (ac *AnalyzeController) HandleAnalyze(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "query is required"})
	}

	ok, err := ac.ledger.Debit(c.Context(), userCtx.UserID)
	if err != nil {
		log.Printf("analyze: debit failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to spend credit"})
	}
	if !ok {
		// Declared business failure: the caller must show the upgrade prompt
		// and must not call the generator.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"code":    "insufficient_credits",
			"message": "Sem créditos disponíveis. Faça upgrade para continuar.",
		})
	}

	report, err := ac.generator.Analyze(c.Context(), req.Query, userCtx.Tier)
	if err != nil {
		// The spent credit is intentionally not restored.
		log.Printf("analyze: generation failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "report generation failed"})
	}

	analysis := &models.Analysis{
		UUID:      uuid.NewString(),
		UserID:    userCtx.UserID,
		Query:     req.Query,
		ModelUsed: report.ModelUsed,
		Score:     report.Score.Total,
	}
	if payload, err := json.Marshal(report); err == nil {
		analysis.ReportJSON = string(payload)
	}
	if err := ac.analyses.Create(analysis); err != nil {
		// Persisting the report is best-effort; the user already paid for it.
		log.Printf("analyze: storing report failed for user %d: %v", userCtx.UserID, err)
		analysis.UUID = ""
	}

	remaining := 0
	if user, err := ac.users.GetByID(userCtx.UserID); err == nil {
		remaining = user.Credits
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"uuid":              analysis.UUID,
			"report":            report,
			"credits_remaining": remaining,
		},
	})
}
