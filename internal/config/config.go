package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	DocStoreDriver string `mapstructure:"DOCSTORE_DRIVER"`
	MongoURI       string `mapstructure:"MONGO_URI"`
	MongoDatabase  string `mapstructure:"MONGO_DATABASE"`
	ArangoURL      string `mapstructure:"ARANGO_URL"`
	ArangoUsername string `mapstructure:"ARANGO_USERNAME"`
	ArangoPassword string `mapstructure:"ARANGO_PASSWORD"`
	ArangoDatabase string `mapstructure:"ARANGO_DATABASE"`

	OTelEndpoint    string `mapstructure:"OTEL_ENDPOINT"`
	OTelHeaders     string `mapstructure:"OTEL_HEADERS"`
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	ServiceVersion  string `mapstructure:"SERVICE_VERSION"`
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

func (c Config) OTel() OTelConfig {
	return OTelConfig{
		Endpoint:       c.OTelEndpoint,
		Headers:        c.OTelHeaders,
		ServiceName:    c.OTelServiceName,
		ServiceVersion: c.ServiceVersion,
	}
}

// Enabled reports whether traces should be exported.
func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DOCSTORE_DRIVER", "mongo")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "servicedesk")
	v.SetDefault("ARANGO_URL", "")
	v.SetDefault("ARANGO_USERNAME", "root")
	v.SetDefault("ARANGO_PASSWORD", "")
	v.SetDefault("ARANGO_DATABASE", "servicedesk")
	v.SetDefault("OTEL_ENDPOINT", "")
	v.SetDefault("OTEL_HEADERS", "")
	v.SetDefault("OTEL_SERVICE_NAME", "opsmetrics")
	v.SetDefault("SERVICE_VERSION", "dev")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.DocStoreDriver {
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when DOCSTORE_DRIVER=mongo")
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_DATABASE is required when DOCSTORE_DRIVER=mongo")
		}
	case "arango":
		if c.ArangoURL == "" {
			return fmt.Errorf("ARANGO_URL is required when DOCSTORE_DRIVER=arango")
		}
	default:
		return fmt.Errorf("DOCSTORE_DRIVER must be mongo or arango, got %q", c.DocStoreDriver)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	return nil
}
