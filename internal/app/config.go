package app

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/ndtmaster-backend/internal/data/db"
	"github.com/yungbote/ndtmaster-backend/internal/observability"
	"github.com/yungbote/ndtmaster-backend/internal/platform/browser"
	"github.com/yungbote/ndtmaster-backend/internal/platform/llm"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

const (
	DraftStoreMemory = "memory"
	DraftStoreRedis  = "redis"

	BackendMock     = "mock"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Port        string
	LogMode     string
	CORSOrigins []string

	LLM         llm.Config
	Browser     browser.Config
	SofficePath string
	AvatarFont  string
	// ExportTimeout bounds one PDF or DOCX export.
	ExportTimeout time.Duration

	DraftStore     string
	DraftTTL       time.Duration
	DraftPurgeSpec string
	RedisAddr      string

	BackendMode string
	MockLatency bool
	DB          db.Config

	Metrics observability.MetricsConfig
	// MetricsAddr starts a second listener serving only /metrics.
	MetricsAddr string
	Otel        observability.OtelConfig
}

// LoadConfig reads env vars, optionally overlaid by ndtmaster.yaml in the
// working directory or the file named by configFile. Env wins over the file.
func LoadConfig(log *logger.Logger, configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ndtmaster")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, err
		}
	} else if log != nil {
		log.Info("Loaded config file", "path", v.ConfigFileUsed())
	}

	geminiKey := v.GetString("GEMINI_API_KEY")
	if geminiKey == "" {
		geminiKey = v.GetString("API_KEY")
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("BACKEND_MODE")))
	cfg := Config{
		Port:        v.GetString("PORT"),
		LogMode:     v.GetString("LOG_MODE"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		LLM: llm.Config{
			Provider:        v.GetString("LLM_PROVIDER"),
			Model:           v.GetString("LLM_MODEL"),
			BaseURL:         v.GetString("LLM_BASE_URL"),
			GeminiAPIKey:    geminiKey,
			AnthropicAPIKey: v.GetString("ANTHROPIC_API_KEY"),
			Timeout:         time.Duration(v.GetInt("LLM_TIMEOUT_SECONDS")) * time.Second,
		},
		Browser: browser.Config{
			Mode:       v.GetString("BROWSER_MODE"),
			ControlURL: v.GetString("BROWSER_URL"),
			Bin:        v.GetString("BROWSER_BIN"),
		},
		SofficePath:    v.GetString("SOFFICE_PATH"),
		ExportTimeout:  time.Duration(v.GetInt("EXPORT_TIMEOUT_SECONDS")) * time.Second,
		AvatarFont:     v.GetString("AVATAR_FONT_PATH"),
		DraftStore:     strings.ToLower(strings.TrimSpace(v.GetString("DRAFT_STORE"))),
		DraftTTL:       time.Duration(v.GetInt("DRAFT_TTL_MINUTES")) * time.Minute,
		DraftPurgeSpec: v.GetString("DRAFT_PURGE_SCHEDULE"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		BackendMode:    backend,
		MockLatency:    v.GetBool("MOCK_LATENCY_ENABLED"),
		DB: db.Config{
			Driver:           backend,
			SQLitePath:       v.GetString("SQLITE_PATH"),
			PostgresHost:     v.GetString("POSTGRES_HOST"),
			PostgresPort:     v.GetString("POSTGRES_PORT"),
			PostgresUser:     v.GetString("POSTGRES_USER"),
			PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
			PostgresName:     v.GetString("POSTGRES_NAME"),
		},
		Metrics: observability.MetricsConfig{
			Enabled:         v.GetBool("METRICS_ENABLED"),
			CostInputPer1K:  v.GetFloat64("LLM_COST_INPUT_PER_1K"),
			CostOutputPer1K: v.GetFloat64("LLM_COST_OUTPUT_PER_1K"),
			ScrapeInterval:  time.Duration(v.GetInt("METRICS_SCRAPE_INTERVAL_SECONDS")) * time.Second,
		},
		MetricsAddr: v.GetString("METRICS_ADDR"),
		Otel: observability.OtelConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
			SampleRatio: v.GetFloat64("OTEL_SAMPLER_RATIO"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Headers:     v.GetString("OTEL_EXPORTER_OTLP_HEADERS"),
			Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		},
	}
	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = services.DefaultDraftTTL
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_TIMEOUT_SECONDS", 90)
	v.SetDefault("BROWSER_MODE", browser.ModeLaunch)
	v.SetDefault("SOFFICE_PATH", "soffice")
	v.SetDefault("EXPORT_TIMEOUT_SECONDS", 120)
	v.SetDefault("DRAFT_STORE", DraftStoreMemory)
	v.SetDefault("DRAFT_TTL_MINUTES", int(services.DefaultDraftTTL/time.Minute))
	v.SetDefault("DRAFT_PURGE_SCHEDULE", "@every 5m")
	v.SetDefault("BACKEND_MODE", BackendMock)
	v.SetDefault("MOCK_LATENCY_ENABLED", true)
	v.SetDefault("SQLITE_PATH", "ndtmaster.db")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_NAME", "ndtmaster")
	v.SetDefault("OTEL_SERVICE_NAME", "ndtmaster-backend")
	v.SetDefault("OTEL_SAMPLER_RATIO", 0.1)
	v.SetDefault("METRICS_SCRAPE_INTERVAL_SECONDS", 10)
	v.SetDefault("APP_ENV", "development")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
