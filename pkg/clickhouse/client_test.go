package clickhouse

import (
	"context"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
)

func TestBuildOptions(t *testing.T) {
	opts := buildOptions(ClientConfig{
		Host:        "ch.local",
		Port:        8123,
		Database:    "finchat",
		User:        "u",
		Password:    "p",
		UseHTTP:     true,
		AsyncInsert: true,
		MaxExecTime: 30 * time.Second,
	})

	assert.Equal(t, []string{"ch.local:8123"}, opts.Addr)
	assert.Equal(t, "finchat", opts.Auth.Database)
	assert.Equal(t, ch.HTTP, opts.Protocol)
	assert.Equal(t, 30, opts.Settings["max_execution_time"])
	assert.Equal(t, 1, opts.Settings["async_insert"])
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background())
	assert.Error(t, err)
}
