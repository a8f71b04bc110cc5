package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/claridapp/clarid/internal/pkg/payments"
)

// corsAllowedHeaders mirrors what the checkout provider sends on preflight.
const corsAllowedHeaders = "authorization, x-client-info, apikey, content-type, x-kiwify-signature"

// WebhookController receives Kiwify payment events and reconciles credit
// balances through the payments service.
type WebhookController struct {
	service *payments.Service
	secret  string
}

// NewWebhookController creates a webhook controller with an injected
// payments service and shared webhook secret. An empty secret disables
// signature verification (insecure mode, logged on every delivery).
func NewWebhookController(service *payments.Service, secret string) *WebhookController {
	return &WebhookController{service: service, secret: secret}
}

// HandleKiwifyWebhook serves the webhook endpoint for all methods: OPTIONS
// preflight, POST deliveries, and method-not-allowed for everything else.
func (wc *WebhookController) HandleKiwifyWebhook(c *fiber.Ctx) error {
	setCORSHeaders(c)

	switch c.Method() {
	case fiber.MethodOptions:
		return c.SendStatus(fiber.StatusNoContent)
	case fiber.MethodPost:
		// handled below
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Método não permitido"})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)

	if wc.secret != "" {
		signature := c.Get("x-kiwify-signature")
		if !payments.VerifySignature(rawBody, signature, wc.secret) {
			log.Printf("kiwify webhook: invalid signature")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Assinatura inválida"})
		}
	} else {
		log.Printf("Warning: KIWIFY_WEBHOOK_SECRET not configured - skipping signature verification")
	}

	event, err := payments.ParseEvent(rawBody)
	if err != nil {
		log.Printf("kiwify webhook: invalid payload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	log.Printf("kiwify event received: %s (order %s, product %s)", event.Event, event.OrderID, event.Product.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result := wc.service.Process(ctx, event, rawBody)

	return c.Status(fiber.StatusOK).JSON(result)
}

func setCORSHeaders(c *fiber.Ctx) {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
	c.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}
