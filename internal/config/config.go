package config

import (
	"fmt"
	"os"
)

// Config holds everything the service reads from the environment
type Config struct {
	Port         string
	DatabaseURL  string
	OpenAIKey    string
	EvolutionURL string
	EvolutionKey string
	InstanceName string
	RabbitMQURL  string

	// UseMemoryStore swaps PostgreSQL for the in-memory store (testing only)
	UseMemoryStore bool
}

// Load reads and validates the environment configuration
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		EvolutionURL:   os.Getenv("EVOLUTION_API_URL"),
		EvolutionKey:   os.Getenv("EVOLUTION_API_KEY"),
		InstanceName:   getEnv("INSTANCE_NAME", "vendas"),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		UseMemoryStore: os.Getenv("USE_MEMORY_STORE") == "true",
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.EvolutionURL == "" {
		return nil, fmt.Errorf("EVOLUTION_API_URL is required")
	}
	if cfg.EvolutionKey == "" {
		return nil, fmt.Errorf("EVOLUTION_API_KEY is required")
	}
	if !cfg.UseMemoryStore && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
