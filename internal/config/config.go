// Package config holds runtime settings for the keepsake CLI, layered
// from defaults, an optional JSON file, and command-line flags. Later
// sources take precedence.
package config

import "time"

// Config holds every runtime setting the application needs.
type Config struct {
	// APIBaseURL is the base URL of the data backend.
	APIBaseURL string

	// Secret is the plain shared secret unlocking the app. Ignored
	// when SecretVerifier is set.
	Secret string

	// SecretVerifier is the argon2id verifier form of the secret.
	SecretVerifier string

	// SessionKey signs session tokens.
	SessionKey string

	// SessionTTL bounds how long an unlock lasts.
	SessionTTL time.Duration

	// Object storage settings for attachments and the gallery.
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	MediaPrefix string

	// LocalDBPath is where the offline snapshot database lives.
	LocalDBPath string

	// WatchInterval is how often live views poll the backend.
	WatchInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.Secret = "29.06.2025"
	c.SessionKey = "keepsake-dev-session-key"
	c.SessionTTL = 12 * time.Hour
	c.S3Region = "us-east-1"
	c.S3Bucket = "keepsake-media"
	c.MediaPrefix = "media/memories"
	c.LocalDBPath = "keepsake.db"
	c.WatchInterval = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays
// values from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
