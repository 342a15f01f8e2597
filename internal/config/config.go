package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Exolve     ExolveConfig     `yaml:"exolve" mapstructure:"exolve"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Yandex     YandexConfig     `yaml:"yandex" mapstructure:"yandex"`
	Sink       SinkConfig       `yaml:"sink" mapstructure:"sink"`
	Ledger     LedgerConfig     `yaml:"ledger" mapstructure:"ledger"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Circuit    CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ExolveConfig holds call-platform API settings.
type ExolveConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	LookbackHours int    `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	PageLimit     int    `yaml:"page_limit" mapstructure:"page_limit"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Lookback returns the listing window as a duration.
func (c ExolveConfig) Lookback() time.Duration {
	return time.Duration(c.LookbackHours) * time.Hour
}

// LLMConfig holds provider-independent completion settings.
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	Temperature       float64 `yaml:"temperature" mapstructure:"temperature"`
	DeriveTemperature float64 `yaml:"derive_temperature" mapstructure:"derive_temperature"`
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	PromptsFile       string  `yaml:"prompts_file" mapstructure:"prompts_file"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// YandexConfig holds YandexGPT settings.
type YandexConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	FolderID string `yaml:"folder_id" mapstructure:"folder_id"`
	Model    string `yaml:"model" mapstructure:"model"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// SinkConfig selects and configures the row sink.
type SinkConfig struct {
	Driver      string       `yaml:"driver" mapstructure:"driver"`
	TimeoutSecs int          `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Sheets      SheetsConfig `yaml:"sheets" mapstructure:"sheets"`
	XLSX        XLSXConfig   `yaml:"xlsx" mapstructure:"xlsx"`
	Notion      NotionConfig `yaml:"notion" mapstructure:"notion"`
}

// SheetsConfig holds Google Sheets settings. CredentialsFile is a
// service-account key; tokens minted from it are refreshed automatically.
// AccessToken is a static bearer token used only when no key file is set.
type SheetsConfig struct {
	URL             string `yaml:"url" mapstructure:"url"`
	Range           string `yaml:"range" mapstructure:"range"`
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	AccessToken     string `yaml:"access_token" mapstructure:"access_token"`
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
}

// XLSXConfig holds the local workbook sink settings.
type XLSXConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Sheet string `yaml:"sheet" mapstructure:"sheet"`
}

// NotionConfig holds Notion database sink settings.
type NotionConfig struct {
	Token             string  `yaml:"token" mapstructure:"token"`
	DatabaseID        string  `yaml:"database_id" mapstructure:"database_id"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// LedgerConfig selects the dedup ledger backend.
type LedgerConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PipelineConfig configures ingestion behavior.
type PipelineConfig struct {
	Variant               string `yaml:"variant" mapstructure:"variant"`
	MinTranscriptLen      int    `yaml:"min_transcript_len" mapstructure:"min_transcript_len"`
	EventMinTranscriptLen int    `yaml:"event_min_transcript_len" mapstructure:"event_min_transcript_len"`
	IntervalMinutes       int    `yaml:"interval_minutes" mapstructure:"interval_minutes"`
	MaxAttempts           int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// Interval returns the polling interval as a duration.
func (c PipelineConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Host         string   `yaml:"host" mapstructure:"host"`
	Port         int      `yaml:"port" mapstructure:"port"`
	WebhookToken string   `yaml:"webhook_token" mapstructure:"webhook_token"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// CircuitConfig configures the LLM circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// MonitoringConfig configures pass metrics and alerting.
type MonitoringConfig struct {
	// WebhookURL receives alerts as JSON. Empty disables delivery.
	WebhookURL            string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	LookbackWindowHours   int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	FailureRateThreshold  float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	DegradedRateThreshold float64 `yaml:"degraded_rate_threshold" mapstructure:"degraded_rate_threshold"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CALLINSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound.
	for _, key := range []string{
		"exolve.key",
		"anthropic.key",
		"anthropic.base_url",
		"yandex.key",
		"yandex.folder_id",
		"llm.prompts_file",
		"sink.sheets.url",
		"sink.sheets.credentials_file",
		"sink.sheets.access_token",
		"sink.notion.token",
		"sink.notion.database_id",
		"ledger.database_url",
		"server.webhook_token",
		"monitoring.webhook_url",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("exolve.base_url", "https://app.exolve.ru/api/v1")
	v.SetDefault("exolve.lookback_hours", 1)
	v.SetDefault("exolve.page_limit", 50)
	v.SetDefault("exolve.timeout_secs", 30)
	v.SetDefault("llm.provider", "yandex")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.derive_temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout_secs", 30)
	v.SetDefault("llm.requests_per_second", 0)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("yandex.model", "yandexgpt-lite")
	v.SetDefault("yandex.base_url", "https://llm.api.cloud.yandex.net")
	v.SetDefault("sink.driver", "sheets")
	v.SetDefault("sink.timeout_secs", 30)
	v.SetDefault("sink.notion.requests_per_second", 3)
	v.SetDefault("sink.sheets.range", "Sheet1")
	v.SetDefault("sink.sheets.base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("sink.xlsx.path", "call_insights.xlsx")
	v.SetDefault("sink.xlsx.sheet", "Insights")
	v.SetDefault("ledger.driver", "file")
	v.SetDefault("ledger.path", "processed_calls.txt")
	v.SetDefault("pipeline.variant", "insights")
	v.SetDefault("pipeline.min_transcript_len", 100)
	v.SetDefault("pipeline.event_min_transcript_len", 50)
	v.SetDefault("pipeline.interval_minutes", 5)
	v.SetDefault("pipeline.max_attempts", 0)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 60)
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.degraded_rate_threshold", 0.5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the keys required by the given command mode are set.
// Modes: "poll", "serve", "analyze", "rows", "inspect".
func (c *Config) Validate(mode string) error {
	var missing []string
	need := func(ok bool, key string) {
		if !ok {
			missing = append(missing, key)
		}
	}

	usesSource := mode == "poll" || mode == "serve" || mode == "inspect"
	usesLLM := mode == "poll" || mode == "serve" || mode == "analyze"
	usesSink := mode == "poll" || mode == "serve" || mode == "rows"

	if usesSource {
		need(c.Exolve.Key != "", "exolve.key")
	}

	if usesLLM {
		switch c.LLM.Provider {
		case "yandex":
			need(c.Yandex.Key != "", "yandex.key")
			need(c.Yandex.FolderID != "", "yandex.folder_id")
		case "anthropic":
			need(c.Anthropic.Key != "", "anthropic.key")
		default:
			return eris.Errorf("config: unknown llm.provider %q", c.LLM.Provider)
		}
		switch c.Pipeline.Variant {
		case "insights", "creatives":
		default:
			return eris.Errorf("config: unknown pipeline.variant %q", c.Pipeline.Variant)
		}
	}

	if usesSink {
		switch c.Sink.Driver {
		case "sheets":
			need(c.Sink.Sheets.URL != "", "sink.sheets.url")
			need(c.Sink.Sheets.CredentialsFile != "" || c.Sink.Sheets.AccessToken != "", "sink.sheets.credentials_file")
		case "xlsx":
			need(c.Sink.XLSX.Path != "", "sink.xlsx.path")
		case "notion":
			need(c.Sink.Notion.Token != "", "sink.notion.token")
			need(c.Sink.Notion.DatabaseID != "", "sink.notion.database_id")
		default:
			return eris.Errorf("config: unknown sink.driver %q", c.Sink.Driver)
		}
	}

	if mode == "poll" {
		switch c.Ledger.Driver {
		case "file", "sqlite":
			need(c.Ledger.Path != "", "ledger.path")
		case "postgres":
			need(c.Ledger.DatabaseURL != "", "ledger.database_url")
		default:
			return eris.Errorf("config: unknown ledger.driver %q", c.Ledger.Driver)
		}
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required keys for %s: %s", mode, strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
