package config

import (
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("server:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("port = %d", c.Server.Port)
	}
	if c.Upstream.ValuationTimeout != 40*time.Second {
		t.Fatalf("valuation timeout = %v", c.Upstream.ValuationTimeout)
	}
	if c.Chat.DemoStepDelay != 3*time.Second {
		t.Fatalf("demo delay = %v", c.Chat.DemoStepDelay)
	}
	if c.LLM.DeepSeek.Model != "deepseek-chat" || c.LLM.Perplexity.Model != "sonar-pro" {
		t.Fatalf("provider defaults not applied: %+v", c.LLM)
	}
	if c.LLM.DeepSeek.Configured() {
		t.Fatalf("deepseek should not be configured without a key")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate defaults: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	c, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := map[string]string{
		"DEEPSEEK_KEY":      "ds",
		"VALUATION_API_URL": "http://valuation:8000/",
		"MOCK_API":          "true",
		"SERVER_PORT":       "7000",
		"REDIS_ADDR":        "redis:6380",
		"KAFKA_BROKERS":     "k1:9092,k2:9092",
		"LOG_LEVEL":         "DEBUG",
	}
	c.ApplyEnv(func(k string) string { return env[k] })

	if c.LLM.DeepSeek.APIKey != "ds" || !c.LLM.DeepSeek.Configured() {
		t.Fatalf("deepseek key not applied")
	}
	if c.Upstream.ValuationBaseURL != "http://valuation:8000" {
		t.Fatalf("valuation url = %q", c.Upstream.ValuationBaseURL)
	}
	if !c.Mock || c.Server.Port != 7000 {
		t.Fatalf("mock=%v port=%d", c.Mock, c.Server.Port)
	}
	if c.Cache.Redis.Host != "redis" || c.Cache.Redis.Port != 6380 {
		t.Fatalf("redis = %s:%d", c.Cache.Redis.Host, c.Cache.Redis.Port)
	}
	if len(c.QueryLog.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v", c.QueryLog.Kafka.Brokers)
	}
	if c.Logging.Level != "debug" {
		t.Fatalf("level = %s", c.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"cache backend": "cache:\n  backend: disk\n",
		"log level":     "logging:\n  level: verbose\n",
		"port":          "server:\n  port: 70000\n",
	}
	for name, doc := range cases {
		c, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("%s: parse: %v", name, err)
		}
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestCommittedConfigValidates(t *testing.T) {
	c, err := Load("../../config/config.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.QueryLog.Queue.Enabled || c.QueryLog.Queue.Workers != 2 {
		t.Fatalf("queue defaults = %+v", c.QueryLog.Queue)
	}
	if c.LLM.Perplexity.Timeout != 90*time.Second {
		t.Fatalf("perplexity timeout = %v", c.LLM.Perplexity.Timeout)
	}
	if c.Cache.Memory.Cleanup != 5*time.Minute || c.Cache.Redis.PoolSize != 10 || c.Cache.Redis.MinIdle != 2 {
		t.Fatalf("cache = %+v", c.Cache)
	}
}
