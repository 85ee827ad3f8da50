// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"fairway/app/ai"
)

// Store drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR,default=:8080" validate:"required"`
	LogLevel  string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT,default=json" validate:"oneof=json console"`

	StoreDriver string `env:"STORE_DRIVER,default=badger" validate:"oneof=badger postgres memory"`
	BadgerPath  string `env:"BADGER_PATH,default=data/badger" validate:"required_if=StoreDriver badger"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`

	AIProvider  string `env:"AI_PROVIDER" validate:"omitempty,oneof=openai gemini"`
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	OpenAIModel string `env:"OPENAI_MODEL,default=gpt-4o-mini"`
	GeminiKey   string `env:"GEMINI_API_KEY"`
	GeminiModel string `env:"GEMINI_MODEL,default=gemini-2.0-flash"`

	SolapiKey    string `env:"SOLAPI_API_KEY"`
	SolapiSecret string `env:"SOLAPI_API_SECRET"`
	SolapiSender string `env:"SOLAPI_SENDER"`
	SolapiPFID   string `env:"SOLAPI_PFID"`
	KakaoAdmin   string `env:"KAKAO_ADMIN_KEY"`

	CronSecret        string        `env:"CRON_SECRET"`
	AdminUser         string        `env:"ADMIN_USER,default=admin" validate:"required"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `env:"JWT_SECRET"`
	JWTTTL            time.Duration `env:"JWT_TTL,default=12h" validate:"gt=0"`

	DispatchSchedule string `env:"DISPATCH_SCHEDULE,default=@every 1m"`
	DispatchDryRun   bool   `env:"DISPATCH_DRY_RUN,default=false"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=10" validate:"gte=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=20" validate:"gte=0"`
	CORSOrigins    string  `env:"CORS_ORIGINS,default=*"`

	PublicBaseURL string `env:"PUBLIC_BASE_URL,default=https://win.masgolf.co.kr" validate:"url"`
	SiteURL       string `env:"SITE_URL,default=https://www.masgolf.co.kr" validate:"url"`
	BrandFile     string `env:"BRAND_FILE"`
	BackupDir     string `env:"BACKUP_DIR,default=data/backups"`
}

var validate = validator.New()

// Load reads the given .env files when they exist, then decodes and
// validates the environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) AISettings() ai.Settings {
	return ai.Settings{
		Provider:    c.AIProvider,
		OpenAIKey:   c.OpenAIKey,
		OpenAIModel: c.OpenAIModel,
		GeminiKey:   c.GeminiKey,
		GeminiModel: c.GeminiModel,
	}
}

// Origins splits CORS_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// AuthEnabled reports whether admin login is possible.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" && c.AdminPasswordHash != ""
}
