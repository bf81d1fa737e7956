package otel

import "github.com/kelseyhightower/envconfig"

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string `envconfig:"ENDPOINT"`
	Enabled  bool   `envconfig:"ENABLED" default:"false"`
	Insecure bool   `envconfig:"INSECURE" default:"false"`
}

// LoadConfig loads OTEL configuration from ACTIVITY_OTEL_* environment
// variables. Unparseable values leave the exporter disabled.
func LoadConfig() Config {
	var cfg Config
	if err := envconfig.Process("activity_otel", &cfg); err != nil {
		return Config{}
	}
	return cfg
}
