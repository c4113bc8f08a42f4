package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/lojazap/vendas-backend/database"
	"github.com/lojazap/vendas-backend/internal/config"
	"github.com/lojazap/vendas-backend/internal/events"
	"github.com/lojazap/vendas-backend/internal/handlers"
	"github.com/lojazap/vendas-backend/internal/models"
	"github.com/lojazap/vendas-backend/internal/routes"
	"github.com/lojazap/vendas-backend/internal/services"
	"github.com/lojazap/vendas-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Initialize storage
	var store storage.Store
	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		if err := database.Connect(cfg.DatabaseURL); err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Admin{},
			&models.Produto{},
			&models.Pedido{},
			&models.ItemPedido{},
			&models.Configuracao{},
			&models.Conversa{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database: ", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}

	// Event publisher (optional broker)
	var publisher events.Publisher
	if cfg.RabbitMQURL != "" {
		publisher, err = events.NewPublisher(cfg.RabbitMQURL, "vendas.events")
		if err != nil {
			log.Fatal("Failed to connect to broker: ", err)
		}
		log.Println("✅ Event publisher connected")
	} else {
		publisher = events.NewFallback()
	}
	defer publisher.Close()

	// Initialize all services
	gateway := services.NewEvolutionService(cfg.EvolutionURL, cfg.EvolutionKey, cfg.InstanceName)
	openaiClient := services.NewOpenAIClient(cfg.OpenAIKey)
	memory := services.NewSessionMemory()
	orderService := services.NewOrderService(store, publisher)
	commandService := services.NewAdminCommandService(store, memory)
	aiService := services.NewAIService(store, memory, openaiClient, orderService)
	webhookHandler := handlers.NewWebhookHandler(store, memory, commandService, aiService, gateway)

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "WhatsApp AI Vendas v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, webhookHandler)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 WhatsApp AI Vendas starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", storageType(cfg))
	log.Printf("📱 Gateway instance: %s", cfg.InstanceName)
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func storageType(cfg *config.Config) string {
	if cfg.UseMemoryStore {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
