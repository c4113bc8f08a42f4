package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lojazap/vendas-backend/internal/handlers"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, webhook *handlers.WebhookHandler) {
	app.Get("/", handlers.Root)
	app.Get("/health", handlers.Health)

	app.Post("/webhook", webhook.HandleWebhook)
}
