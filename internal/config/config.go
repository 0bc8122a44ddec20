package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// Database (PostgreSQL)
	DBHost    string `envconfig:"DB_HOST" default:"localhost"`
	DBPort    string `envconfig:"DB_PORT" default:"5432"`
	DBUser    string `envconfig:"DB_USER" default:"postgres"`
	DBName    string `envconfig:"DB_NAME" default:"storycraft_db"`
	DBSSLMode string `envconfig:"DB_SSL_MODE" default:"disable"`
	// Secret field, loaded from the secrets dir (no envconfig tag)
	DBPassword string

	// Asset Store
	AssetRoot string `envconfig:"ASSET_ROOT" default:"./data/assets"`

	// AI (OpenAI-compatible API)
	AIBaseURL         string        `envconfig:"AI_BASE_URL" default:""`
	AITextModel       string        `envconfig:"AI_TEXT_MODEL" default:"gpt-3.5-turbo"`
	AIImageModel      string        `envconfig:"AI_IMAGE_MODEL" default:"dall-e-3"`
	AIMaxOutputTokens int           `envconfig:"AI_MAX_OUTPUT_TOKENS" default:"200"`
	AITimeout         time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	// Secret field (no envconfig tag)
	AIAPIKey string

	// Context Builder
	ContextTokenBudget int `envconfig:"CONTEXT_TOKEN_BUDGET" default:"3000"`

	// Style suffix appended to every image prompt.
	ImageStyleSuffix string `envconfig:"IMAGE_STYLE_SUFFIX" default:""`

	// JWT verification (tokens are issued elsewhere)
	JWTSecret string

	// Async craft tasks
	MaxCraftTasks int `envconfig:"MAX_CRAFT_TASKS" default:"10"`

	// CORS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	var loadErr error
	cfg.DBPassword, loadErr = readSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.AIAPIKey, loadErr = readSecret("openai_api_key")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.JWTSecret, loadErr = readSecret("jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	return &cfg, nil
}

// readSecret reads a Docker secret, falling back to the corresponding
// upper-cased environment variable for non-containerized runs.
func readSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	envName := strings.ToUpper(secretName)
	if value := strings.TrimSpace(os.Getenv(envName)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("secret %s not found in %s or env %s", secretName, filePath, envName)
}
