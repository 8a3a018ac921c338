package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           int      `envconfig:"PORT" default:"8080"`
	StorageBackend string   `envconfig:"STORAGE_BACKEND" default:"sqlite"`
	DBPath         string   `envconfig:"DB_PATH" default:"./moonshade.db"`
	RedisAddr      string   `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string   `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB        int      `envconfig:"REDIS_DB" default:"0"`
	StateKey       string   `envconfig:"STATE_KEY" default:"moonshade_events_ui_v1"`
	ShareToken     string   `envconfig:"SHARE_TOKEN" default:""`
	CORSOrigins    []string `envconfig:"CORS_ORIGINS" default:"http://localhost:*"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string   `envconfig:"LOG_FORMAT" default:"console"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
