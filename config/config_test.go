package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "notifications", cfg.RabbitMQNotifyQueue)
	assert.Equal(t, 10*time.Second, cfg.SideEffectTimeout)
	assert.Equal(t, 5*time.Second, cfg.FollowLockTTL)
	assert.Equal(t, 30*time.Second, cfg.RankingCacheTTL)
	assert.Equal(t, "vehicles", cfg.ESVehiclesIndex)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FOLLOW_LOCK_TTL", "2s")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test, ,http://b.test ")

	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.FollowLockTTL)
	assert.True(t, cfg.CookieSecure)
	assert.EqualValues(t, 10, cfg.DBMaxConns)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
}
