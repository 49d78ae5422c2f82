package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigFailsValidateWithoutUpstreamURLs(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "upstream service/PDS URLs have no safe default")
}

func TestValidateAcceptsConfigWithUpstreamURLsSet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ATProtoServiceURL = "https://public.api.bsky.app"
	cfg.ATProtoPDSURL = "https://bsky.social"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonPositivePort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ATProtoServiceURL = "https://x"
	cfg.ATProtoPDSURL = "https://y"
	cfg.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeCacheDatabase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ATProtoServiceURL = "https://x"
	cfg.ATProtoPDSURL = "https://y"
	cfg.CacheDatabase = -1
	assert.Error(t, cfg.Validate())
}

func TestConfigFromEnvUsesDefaultsWhenUnset(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HOSTNAME", "")
	cfg := ConfigFromEnv()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Hostname)
}

func TestConfigFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HOSTNAME", "gateway.example")
	t.Setenv("ATPROTO_SERVICE_URL", "https://public.api.bsky.app")
	t.Setenv("ATPROTO_PDS_URL", "https://bsky.social")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := ConfigFromEnv()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "gateway.example", cfg.Hostname)
	assert.True(t, cfg.TracingEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnvIgnoresInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg := ConfigFromEnv()
	assert.Equal(t, 8080, cfg.Port)
}

func TestCacheAddrFormatsHostPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheHost = "valkey.internal"
	cfg.CachePort = 6380
	assert.Equal(t, "valkey.internal:6380", cfg.CacheAddr())
}

func TestSlogLevelParsesKnownValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())
}
