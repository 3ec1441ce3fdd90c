package config

import "os"

// Config holds all server settings, read from the environment at startup.
// Handlers never read the environment themselves so tests can construct a
// Config directly.
type Config struct {
	DBPath        string
	Port          string
	BaseURL       string
	SessionSecret string
	AdminUsername string
	AdminPassword string
	CORSOrigin    string
	UploadDir     string
}

// Load reads configuration from environment variables, falling back to
// development defaults.
func Load() Config {
	return Config{
		DBPath:        getenv("INKWELL_DB_PATH", "inkwell.db"),
		Port:          getenv("PORT", "8000"),
		BaseURL:       getenv("INKWELL_BASE_URL", "http://localhost:8000"),
		SessionSecret: getenv("SESSION_SECRET", "inkwell-dev-session-secret"),
		AdminUsername: getenv("INKWELL_ADMIN_USER", "admin"),
		AdminPassword: getenv("INKWELL_ADMIN_PASSWORD", "changeme"),
		CORSOrigin:    getenv("INKWELL_CORS_ORIGIN", "http://localhost:3000"),
		UploadDir:     getenv("INKWELL_UPLOAD_DIR", "uploads"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
