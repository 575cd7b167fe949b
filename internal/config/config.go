// Package config loads the markermap runtime configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Blob backends.
const (
	BlobBackendGCS    = "gcs"
	BlobBackendS3     = "s3"
	BlobBackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	GCP      GCPConfig      `mapstructure:"gcp"`
	Blobs    BlobConfig     `mapstructure:"blobs"`
	S3       S3Config       `mapstructure:"s3"`
	Location LocationConfig `mapstructure:"location"`
	Events   EventsConfig   `mapstructure:"events"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	MaxUploadBytes int `mapstructure:"max_upload_bytes"`
}

type GCPConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Collection      string `mapstructure:"collection"`
}

type BlobConfig struct {
	Backend       string `mapstructure:"backend"`
	Bucket        string `mapstructure:"bucket"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// LocationConfig selects how the user's position is obtained: a geolocation
// service when GeolocationURL is set, otherwise the static Latitude/Longitude.
type LocationConfig struct {
	Granted        bool    `mapstructure:"granted"`
	GeolocationURL string  `mapstructure:"geolocation_url"`
	Latitude       float64 `mapstructure:"latitude"`
	Longitude      float64 `mapstructure:"longitude"`
}

// EventsConfig enables at most one event sink.
type EventsConfig struct {
	PubsubTopic string `mapstructure:"pubsub_topic"`
	WebhookURL  string `mapstructure:"webhook_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads an optional .env file, an optional config.yaml and environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_bytes", 20<<20)
	v.SetDefault("gcp.project_id", "")
	v.SetDefault("gcp.credentials_file", "")
	v.SetDefault("gcp.collection", "markers")
	v.SetDefault("blobs.backend", BlobBackendGCS)
	v.SetDefault("blobs.bucket", "")
	v.SetDefault("blobs.public_base_url", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("location.granted", true)
	v.SetDefault("location.geolocation_url", "")
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("events.pubsub_topic", "")
	v.SetDefault("events.webhook_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig()

	// Environment variables: MARKERMAP_GCP_PROJECT_ID → gcp.project_id
	v.SetEnvPrefix("MARKERMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NeedsFirestore reports whether the marker collection lives in Firestore.
// Without a project ID the service falls back to an in-memory collection.
func (c *Config) NeedsFirestore() bool {
	return c.GCP.ProjectID != ""
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, "server.max_upload_bytes must be positive")
	}
	if c.GCP.Collection == "" {
		errs = append(errs, "gcp.collection is required")
	}

	switch c.Blobs.Backend {
	case BlobBackendGCS:
		if c.Blobs.Bucket == "" {
			errs = append(errs, "blobs.bucket is required for the gcs backend")
		}
		if c.GCP.ProjectID == "" {
			errs = append(errs, "gcp.project_id is required for the gcs backend")
		}
	case BlobBackendS3:
		if c.Blobs.Bucket == "" {
			errs = append(errs, "blobs.bucket is required for the s3 backend")
		}
		if c.S3.Endpoint == "" || c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			errs = append(errs, "s3.endpoint, s3.access_key and s3.secret_key are required for the s3 backend")
		}
	case BlobBackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("blobs.backend must be one of gcs, s3, memory; got %q", c.Blobs.Backend))
	}

	if c.Location.GeolocationURL == "" {
		if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
			errs = append(errs, fmt.Sprintf("location.latitude must be within [-90, 90], got %v", c.Location.Latitude))
		}
		if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
			errs = append(errs, fmt.Sprintf("location.longitude must be within [-180, 180], got %v", c.Location.Longitude))
		}
	}

	if c.Events.PubsubTopic != "" && c.Events.WebhookURL != "" {
		errs = append(errs, "events.pubsub_topic and events.webhook_url are mutually exclusive")
	}
	if c.Events.PubsubTopic != "" && c.GCP.ProjectID == "" {
		errs = append(errs, "gcp.project_id is required for events.pubsub_topic")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
