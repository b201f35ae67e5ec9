package config

import (
	"encoding/json"
	"os"
	"time"

	"keepsake/internal/flagx"
	"keepsake/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It
// relies on timex.Duration so intervals can be given either as strings
// like "5s" or as integer nanoseconds. Empty fields leave the current
// value alone.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	Secret         string         `json:"secret"`
	SecretVerifier string         `json:"secret_verifier"`
	SessionKey     string         `json:"session_key"`
	SessionTTL     timex.Duration `json:"session_ttl"`
	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3Endpoint     string         `json:"s3_endpoint"`
	MediaPrefix    string         `json:"media_prefix"`
	LocalDBPath    string         `json:"local_db_path"`
	WatchInterval  timex.Duration `json:"watch_interval"`
}

// parseJson overlays cfg with values loaded from the JSON file named
// by -c/-config. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.APIBaseURL, jc.APIBaseURL)
	overlay(&cfg.Secret, jc.Secret)
	overlay(&cfg.SecretVerifier, jc.SecretVerifier)
	overlay(&cfg.SessionKey, jc.SessionKey)
	overlay(&cfg.S3AccessKey, jc.S3AccessKey)
	overlay(&cfg.S3SecretKey, jc.S3SecretKey)
	overlay(&cfg.S3Bucket, jc.S3Bucket)
	overlay(&cfg.S3Region, jc.S3Region)
	overlay(&cfg.S3Endpoint, jc.S3Endpoint)
	overlay(&cfg.MediaPrefix, jc.MediaPrefix)
	overlay(&cfg.LocalDBPath, jc.LocalDBPath)

	if jc.SessionTTL.Duration != 0 {
		cfg.SessionTTL = time.Duration(jc.SessionTTL.Duration)
	}
	if jc.WatchInterval.Duration != 0 {
		cfg.WatchInterval = time.Duration(jc.WatchInterval.Duration)
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
