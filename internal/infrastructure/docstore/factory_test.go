package docstore_test

import (
	"net"
	"strconv"
	"testing"

	"github.com/clubhub/backend/internal/infrastructure/config"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactoryConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{Driver: config.StoreDriverMemory, KeyPrefix: "clubhub:"},
		Redis: config.RedisConfig{Host: "127.0.0.1", Port: 1, PoolSize: 2},
		Log:   config.LogConfig{Level: "error"},
	}
}

func splitAddr(t *testing.T, addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestFactory_Open(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := docstore.NewFactory(newFactoryConfig()).Open()
		require.NoError(t, err)
		assert.IsType(t, &docstore.MemoryStore{}, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := newFactoryConfig()
		cfg.Store.Driver = "firebase"
		_, err := docstore.NewFactory(cfg).Open()
		assert.ErrorContains(t, err, `unknown store driver "firebase"`)
	})

	t.Run("unreachable redis without fallback", func(t *testing.T) {
		cfg := newFactoryConfig()
		cfg.Store.Driver = config.StoreDriverRedis
		_, err := docstore.NewFactory(cfg).Open()
		assert.ErrorContains(t, err, "Redis required")
	})

	t.Run("unreachable redis with fallback", func(t *testing.T) {
		cfg := newFactoryConfig()
		cfg.Store.Driver = config.StoreDriverRedis
		store, err := docstore.NewFactory(cfg, docstore.WithInMemoryFallback(true)).Open()
		require.NoError(t, err)
		assert.IsType(t, &docstore.MemoryStore{}, store)
	})
}
