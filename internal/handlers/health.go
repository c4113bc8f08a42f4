package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Root returns the static online-status payload
func Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "online",
		"message":   "🤖 WhatsApp AI Vendas",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Health returns the static healthy payload for monitoring
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
