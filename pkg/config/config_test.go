package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "ACCESS_TTL", "USER_REFRESH_TTL", "ADMIN_REFRESH_TTL",
		"COOKIE_SECURE", "SCORING_TIMEOUT", "ES_INDEX", "KAFKA_BROKERS", "ML_URL"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, 5000, cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 5*time.Hour, cfg.UserRefreshTTL)
	assert.Equal(t, 24*time.Hour, cfg.AdminRefreshTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 10*time.Second, cfg.ScoringTimeout)
	assert.Equal(t, "transactions", cfg.ESIndex)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/fraud")
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("ML_URL", "http://ml:5001/")
	t.Setenv("ADMIN_REFRESH_TTL", "48h")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg := Load()

	assert.Equal(t, 8081, cfg.ServerPort)
	assert.Equal(t, "postgres://u:p@localhost:5432/fraud", cfg.DatabaseURL)
	assert.Equal(t, []byte("access"), cfg.JWTAccessSecret)
	assert.Equal(t, []byte("refresh"), cfg.JWTRefreshSecret)
	assert.Equal(t, "http://ml:5001", cfg.ScoringURL)
	assert.Equal(t, 48*time.Hour, cfg.AdminRefreshTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestEnvHelpers_InvalidFallBack(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "-5s")
	t.Setenv("X_BOOL", "maybe")

	assert.Equal(t, 7, EnvIntDefault("X_INT", 7))
	assert.Equal(t, time.Minute, EnvDurationDefault("X_DUR", time.Minute))
	assert.True(t, EnvBoolDefault("X_BOOL", true))
}
