package router

import (
	"github.com/claridapp/clarid/app/controllers"
	"github.com/claridapp/clarid/app/repository"
	"github.com/claridapp/clarid/internal/pkg/analyzer"
	"github.com/claridapp/clarid/internal/pkg/constants"
	"github.com/claridapp/clarid/internal/pkg/credits"
	"github.com/claridapp/clarid/internal/pkg/database"
	"github.com/claridapp/clarid/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func installAPIRoutes(app *fiber.App) {
	db := database.GetDB()
	repository.InitializeFactory(db)
	factory := repository.GetGlobalFactory()

	authController := controllers.NewAuthController(factory.GetUserRepository())
	userController := controllers.NewUserController(factory.GetUserRepository(), factory.GetAnalysisRepository())
	analyzeController := controllers.NewAnalyzeController(
		credits.NewLedger(db),
		analyzer.NewGeminiClientFromEnv(),
		factory.GetUserRepository(),
		factory.GetAnalysisRepository(),
	)

	app.Use("/api/v1", limiter.New(limiter.Config{Max: 60}), cors.New())

	app.Post(constants.RouteAPIRegister, authController.HandleRegister)
	app.Post(constants.RouteAPILogin, authController.HandleLogin)
	app.Post(constants.RouteAPILogout, authController.HandleLogout)

	app.Post(constants.RouteAPIAnalyze, middleware.RequireAPISessionAuth, analyzeController.HandleAnalyze)
	app.Get(constants.RouteAPICredits, middleware.RequireAPISessionAuth, userController.HandleGetCredits)
	app.Get(constants.RouteAPIAnalyses, middleware.RequireAPISessionAuth, userController.HandleListAnalyses)
	app.Get(constants.RouteAPIAnalyses+"/:uuid", middleware.RequireAPISessionAuth, userController.HandleGetAnalysis)
}
