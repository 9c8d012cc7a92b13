package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	AuthHMACSecret   string
	AdminUser        string
	AdminPassHash    string // bcrypt
	ReviewerUser     string
	ReviewerPassHash string // bcrypt; empty disables the reviewer account

	CORSOrigins []string

	// Defaults for the AI grading collaborator. The settings store can
	// override any of these at runtime; see internal/settings.Provider.
	GradingBaseURL string
	GradingModel   string
	GradingAPIKey  string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),
		DBDriver:  envOr("DB_DRIVER", "sqlite"),
		DBDSN:     envOr("DB_DSN", ""),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:      envOr("ADMIN_USER", "admin"),
		// No default: the operator must supply a bcrypt hash, otherwise the
		// gateway refuses to start.
		AdminPassHash:    os.Getenv("ADMIN_PASS_HASH"),
		ReviewerUser:     envOr("REVIEWER_USER", "reviewer"),
		ReviewerPassHash: os.Getenv("REVIEWER_PASS_HASH"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		GradingBaseURL: envOr("GRADING_BASE_URL", "https://api.openai.com/v1"),
		GradingModel:   envOr("GRADING_MODEL", "gpt-4o-mini"),
		GradingAPIKey:  os.Getenv("GRADING_API_KEY"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
