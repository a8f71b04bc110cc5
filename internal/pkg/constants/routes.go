package constants

// Route paths shared between routers and tests.
const (
	RouteKiwifyWebhook = "/webhooks/kiwify"

	RouteAPIRegister = "/api/v1/auth/register"
	RouteAPILogin    = "/api/v1/auth/login"
	RouteAPILogout   = "/api/v1/auth/logout"

	RouteAPIAnalyze  = "/api/v1/analyze"
	RouteAPICredits  = "/api/v1/credits"
	RouteAPIAnalyses = "/api/v1/analyses"
)
