package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Name string `yaml:"name" default:"finchat"`
		Env  string `yaml:"env" default:"development" validate:"oneof=development staging production test"`
	} `yaml:"app"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
		// ErrorTopic enables the error digest when query-log kafka is configured.
		ErrorTopic string `yaml:"error_topic" default:"logs.errors"`
	} `yaml:"logging"`
	LLM struct {
		DeepSeek   Provider `yaml:"deepseek"`
		Perplexity Provider `yaml:"perplexity"`
		OpenAI     Provider `yaml:"openai"`
	} `yaml:"llm"`
	Upstream struct {
		NewsBaseURL       string        `yaml:"news_base_url" default:"https://smartnews.checkitanalytics.com"`
		KeyMetricsBaseURL string        `yaml:"keymetrics_base_url" default:"https://keymetrics.checkitanalytics.com"`
		FDABaseURL        string        `yaml:"fda_base_url" default:"https://fdacalendar.checkitanalytics.com"`
		ValuationBaseURL  string        `yaml:"valuation_base_url"`
		EarningsBaseURL   string        `yaml:"earnings_base_url" default:"https://smartnews.checkitanalytics.com"`
		Timeout           time.Duration `yaml:"timeout" default:"60s"`
		ValuationTimeout  time.Duration `yaml:"valuation_timeout" default:"40s"`
	} `yaml:"upstream"`
	Chat struct {
		HideClassification bool          `yaml:"hide_classification"`
		DemoStepDelay      time.Duration `yaml:"demo_step_delay" default:"3s"`
		SessionTTL         time.Duration `yaml:"session_ttl" default:"2h"`
		MaxSessions        int           `yaml:"max_sessions" default:"10000" validate:"gte=1"`
	} `yaml:"chat"`
	Cache struct {
		Backend string `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
		Memory  struct {
			MaxSize int           `yaml:"max_size" default:"5000"`
			TTL     time.Duration `yaml:"ttl" default:"10m"`
			Cleanup time.Duration `yaml:"cleanup_interval" default:"5m"`
		} `yaml:"memory"`
		Redis struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size" default:"10"`
			MinIdle  int    `yaml:"min_idle_conns" default:"2"`
			Prefix   string `yaml:"prefix" default:"finchat"`
		} `yaml:"redis"`
		TranslationTTL time.Duration `yaml:"translation_ttl" default:"24h"`
		FDATTL         time.Duration `yaml:"fda_ttl" default:"15m"`
	} `yaml:"cache"`
	RateLimit struct {
		ChatRPS float64 `yaml:"chat_rps" default:"2"`
		Burst   int     `yaml:"burst" default:"5"`
	} `yaml:"ratelimit"`
	QueryLog struct {
		Backend    string `yaml:"backend" default:"memory" validate:"oneof=memory clickhouse"`
		MaxEntries int    `yaml:"max_entries" default:"1000"`
		ClickHouse struct {
			Host             string        `yaml:"host" default:"localhost"`
			Port             int           `yaml:"port" default:"9000"`
			Database         string        `yaml:"database" default:"default"`
			User             string        `yaml:"user" default:"default"`
			Password         string        `yaml:"password"`
			UseHTTP          bool          `yaml:"use_http"`
			AsyncInsert      bool          `yaml:"async_insert"`
			DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		} `yaml:"clickhouse"`
		Kafka struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"chat.query-logs"`
			RequiredAcks int           `yaml:"required_acks" default:"1"`
			Compression  string        `yaml:"compression" default:"snappy"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"500ms"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"kafka"`
		// Queue moves writes onto the redis job queue described under cache.redis.
		Queue struct {
			Enabled    bool          `yaml:"enabled"`
			Workers    int           `yaml:"workers" default:"2"`
			RetryLimit int           `yaml:"retry_limit" default:"3"`
			RetryDelay time.Duration `yaml:"retry_delay" default:"10s"`
		} `yaml:"queue"`
	} `yaml:"querylog"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Mock bool `yaml:"mock"`
}

// Provider describes an OpenAI-compatible chat completion endpoint.
type Provider struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout" default:"60s"`
	RPS     float64       `yaml:"rps" default:"5"`
}

// Configured reports whether requests can be sent.
func (p Provider) Configured() bool {
	return p.APIKey != "" && p.BaseURL != ""
}

// Load reads and parses a YAML configuration file and applies defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes and applies defaults. It does not validate.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyProviderDefaults()
	return &c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables, then validates.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment. getenv is os.Getenv outside tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := firstEnv(getenv, "DEEPSEEK_API_KEY", "DEEPSEEK_KEY"); v != "" {
		c.LLM.DeepSeek.APIKey = v
	}
	if v := getenv("PERPLEXITY_API_KEY"); v != "" {
		c.LLM.Perplexity.APIKey = v
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAI.APIKey = v
	}
	if v := getenv("VALUATION_API_URL"); v != "" {
		c.Upstream.ValuationBaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("MOCK_API"); v != "" {
		c.Mock = v == "true" || v == "1"
	}
	if v := getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		if host, port, ok := splitHostPort(v); ok {
			c.Cache.Redis.Host, c.Cache.Redis.Port = host, port
		}
	}
	if v := getenv("CLICKHOUSE_ADDR"); v != "" {
		if host, port, ok := splitHostPort(v); ok {
			c.QueryLog.ClickHouse.Host, c.QueryLog.ClickHouse.Port = host, port
		}
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.QueryLog.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Chat.DemoStepDelay < 0 {
		return fmt.Errorf("chat.demo_step_delay must not be negative")
	}
	return nil
}

func (c *Config) applyProviderDefaults() {
	setDefault(&c.LLM.DeepSeek, "https://api.deepseek.com", "deepseek-chat")
	setDefault(&c.LLM.Perplexity, "https://api.perplexity.ai", "sonar-pro")
	setDefault(&c.LLM.OpenAI, "https://api.openai.com/v1", "gpt-4o")
}

func setDefault(p *Provider, baseURL, model string) {
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	if p.Model == "" {
		p.Model = model
	}
}

func firstEnv(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitHostPort(addr string) (string, int, bool) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, false
	}
	return host, port, true
}
