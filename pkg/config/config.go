package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte

	AccessTTL       time.Duration
	UserRefreshTTL  time.Duration
	AdminRefreshTTL time.Duration
	CookieSecure    bool

	ScoringURL     string
	ScoringTimeout time.Duration

	CORSOrigins []string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

// LoadDotEnv loads variables from the given files if they exist. System
// environment always wins over the file.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			log.Printf("notice: %s not loaded: %v, using system environment", f, err)
		}
	}
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "fraud-reporting"),
		ServerPort:  EnvIntDefault("PORT", 5000),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),

		AccessTTL:       EnvDurationDefault("ACCESS_TTL", time.Hour),
		UserRefreshTTL:  EnvDurationDefault("USER_REFRESH_TTL", 5*time.Hour),
		AdminRefreshTTL: EnvDurationDefault("ADMIN_REFRESH_TTL", 24*time.Hour),
		CookieSecure:    EnvBoolDefault("COOKIE_SECURE", true),

		ScoringURL:     strings.TrimRight(os.Getenv("ML_URL"), "/"),
		ScoringTimeout: EnvDurationDefault("SCORING_TIMEOUT", 10*time.Second),

		CORSOrigins: CSV(os.Getenv("CORS_ORIGIN")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "transactions"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
