package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	Address     string `env:"ADDRESS" envDefault:":8000"`
	DatabaseURL string `env:"DB_URL,required"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// ChatbotURL is the base URL of the bridge that relays messages to the
	// customer's WhatsApp channel.
	ChatbotURL string `env:"CHATBOT_URL" envDefault:"http://localhost:5000"`

	MaxAssignmentsPerAgent int           `env:"MAX_ASSIGNMENTS_PER_AGENT" envDefault:"3"`
	UnattendedTimeout      time.Duration `env:"UNATTENDED_TIMEOUT" envDefault:"30m"`

	LogLevel string `env:"LOGGING_LEVEL" envDefault:"info"`

	// Testing disables outbound customer-channel calls.
	Testing bool `env:"TESTING" envDefault:"false"`
}

// Load reads the .env file if present and parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if cfg.MaxAssignmentsPerAgent <= 0 {
		return nil, fmt.Errorf("config: MAX_ASSIGNMENTS_PER_AGENT must be positive, got %d", cfg.MaxAssignmentsPerAgent)
	}
	return cfg, nil
}
