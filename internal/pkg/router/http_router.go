package router

import (
	"github.com/claridapp/clarid/app/controllers"
	"github.com/claridapp/clarid/internal/pkg/constants"
	"github.com/claridapp/clarid/internal/pkg/database"
	"github.com/claridapp/clarid/internal/pkg/env"
	"github.com/claridapp/clarid/internal/pkg/middleware"
	"github.com/claridapp/clarid/internal/pkg/payments"
	"github.com/claridapp/clarid/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// The webhook controller gets its own constructed service; the provider
	// calls this endpoint server-to-server with every method it pleases.
	webhookController := controllers.NewWebhookController(
		payments.NewServiceFromDB(database.GetDB()),
		env.GetEnv("KIWIFY_WEBHOOK_SECRET", ""),
	)
	app.All(constants.RouteKiwifyWebhook, webhookController.HandleKiwifyWebhook)

	installAPIRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func InstallRouter(app *fiber.App) {
	setupRoutes(app, NewHttpRouter())
}

func setupRoutes(app *fiber.App, routers ...interface{ InstallRouter(*fiber.App) }) {
	for _, r := range routers {
		r.InstallRouter(app)
	}
}
