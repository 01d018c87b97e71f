package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized at startup.
const (
	EnvConfigPath        = "CONFIG_PATH"
	EnvDBConnection      = "DB_CONNECTION"
	EnvPostgresHost      = "POSTGRES_HOST"
	EnvPostgresPort      = "POSTGRES_PORT"
	EnvPostgresDB        = "POSTGRES_DB"
	EnvPostgresUser      = "POSTGRES_USER"
	EnvPostgresPassword  = "POSTGRES_PASSWORD"
	EnvJWTSecret         = "JWT_SECRET"
	EnvJWTExpiry         = "JWT_EXPIRY"
	EnvCompletionAPIKey  = "GROQ_API_KEY"
	EnvCompletionBaseURL = "GROQ_BASE_URL"
	EnvCompletionModel   = "GROQ_MODEL"
	EnvAdminEmail        = "ADMIN_USERNAME"
	EnvAdminPassword     = "ADMIN_PASSWORD"
	EnvFrontendDir       = "FRONTEND_DIR"
)

// defaultJWTExpiry is used when no expiry is configured.
const defaultJWTExpiry = 12 * time.Hour

// Default upstream settings for the completion service.
const (
	defaultCompletionBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	defaultCompletionModel   = "llama-3.3-70b-versatile"
)

// defaultFrontendDir is where static assets are looked up when unset.
const defaultFrontendDir = "./frontend"

// JWTConfig holds bearer-token signing settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// Enabled reports whether token issuance and validation are configured.
func (c JWTConfig) Enabled() bool {
	return strings.TrimSpace(c.Secret) != ""
}

// CompletionConfig holds upstream completion API settings.
type CompletionConfig struct {
	APIKey  string `yaml:"api-key"`
	BaseURL string `yaml:"base-url"`
	Model   string `yaml:"model"`
}

// Enabled reports whether the completion client can be constructed.
func (c CompletionConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// AdminSeed holds the environment-seeded admin credentials. Never written
// to the config file.
type AdminSeed struct {
	Email    string
	Password string
}

// Enabled reports whether an admin account should be seeded at startup.
func (s AdminSeed) Enabled() bool {
	return strings.TrimSpace(s.Email) != "" && s.Password != ""
}

// Config is the resolved application configuration.
type Config struct {
	DatabaseDSN string
	JWT         JWTConfig
	Completion  CompletionConfig
	AdminSeed   AdminSeed
	FrontendDir string
}

// fileConfig maps the optional YAML config file.
type fileConfig struct {
	JWT         JWTConfig        `yaml:"jwt"`
	Completion  CompletionConfig `yaml:"completion"`
	FrontendDir string           `yaml:"frontend-dir"`
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load resolves configuration from the optional YAML file at configPath and
// the environment, with environment values taking precedence. Missing
// database settings are a fatal configuration error.
func Load(configPath string) (Config, error) {
	cfg := Config{
		JWT:        JWTConfig{Expiry: defaultJWTExpiry},
		Completion: CompletionConfig{BaseURL: defaultCompletionBaseURL, Model: defaultCompletionModel},
	}

	if data, errRead := os.ReadFile(configPath); errRead == nil {
		var fc fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &fc); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", configPath, errUnmarshal)
		}
		if fc.JWT.Secret != "" {
			cfg.JWT.Secret = fc.JWT.Secret
		}
		if fc.JWT.Expiry > 0 {
			cfg.JWT.Expiry = fc.JWT.Expiry
		}
		if fc.Completion.APIKey != "" {
			cfg.Completion.APIKey = fc.Completion.APIKey
		}
		if fc.Completion.BaseURL != "" {
			cfg.Completion.BaseURL = fc.Completion.BaseURL
		}
		if fc.Completion.Model != "" {
			cfg.Completion.Model = fc.Completion.Model
		}
		if strings.TrimSpace(fc.FrontendDir) != "" {
			cfg.FrontendDir = strings.TrimSpace(fc.FrontendDir)
		}
	}

	dsn, errDSN := loadDatabaseDSN()
	if errDSN != nil {
		return Config{}, errDSN
	}
	cfg.DatabaseDSN = dsn

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultJWTExpiry
	}

	if key := strings.TrimSpace(os.Getenv(EnvCompletionAPIKey)); key != "" {
		cfg.Completion.APIKey = key
	}
	if base := strings.TrimSpace(os.Getenv(EnvCompletionBaseURL)); base != "" {
		cfg.Completion.BaseURL = base
	}
	if model := strings.TrimSpace(os.Getenv(EnvCompletionModel)); model != "" {
		cfg.Completion.Model = model
	}

	cfg.AdminSeed = AdminSeed{
		Email:    strings.TrimSpace(os.Getenv(EnvAdminEmail)),
		Password: os.Getenv(EnvAdminPassword),
	}

	if dir := strings.TrimSpace(os.Getenv(EnvFrontendDir)); dir != "" {
		cfg.FrontendDir = dir
	}
	if cfg.FrontendDir == "" {
		cfg.FrontendDir = defaultFrontendDir
	}

	return cfg, nil
}

// loadDatabaseDSN assembles the database DSN from the environment. A full
// DB_CONNECTION value wins; otherwise every POSTGRES_* component is required.
func loadDatabaseDSN() (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	values := map[string]string{
		EnvPostgresHost:     strings.TrimSpace(os.Getenv(EnvPostgresHost)),
		EnvPostgresPort:     strings.TrimSpace(os.Getenv(EnvPostgresPort)),
		EnvPostgresDB:       strings.TrimSpace(os.Getenv(EnvPostgresDB)),
		EnvPostgresUser:     strings.TrimSpace(os.Getenv(EnvPostgresUser)),
		EnvPostgresPassword: os.Getenv(EnvPostgresPassword),
	}
	var missing []string
	for _, name := range []string{EnvPostgresHost, EnvPostgresPort, EnvPostgresDB, EnvPostgresUser, EnvPostgresPassword} {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("config: missing required database env vars: %s", strings.Join(missing, ", "))
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(values[EnvPostgresUser]),
		url.QueryEscape(values[EnvPostgresPassword]),
		values[EnvPostgresHost],
		values[EnvPostgresPort],
		values[EnvPostgresDB],
	), nil
}
