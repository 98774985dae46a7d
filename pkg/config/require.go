package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustServe checks everything the HTTP server cannot start without.
func (c Config) MustServe() {
	MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET")
	MustNonEmptyBytes(c.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	MustNonEmpty(c.ScoringURL, "ML_URL")
}
