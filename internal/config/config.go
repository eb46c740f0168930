package config

import (
	"os"

	"github.com/goccy/go-yaml"
)

type Config struct {
	ServerPort string `yaml:"server_port"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	JWTSecret  string `yaml:"jwt_secret"`
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE, falling back to ./config.yaml) and environment variables,
// in that order of precedence.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort: "8080",
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "kindred",
		DBPassword: "kindred_dev_password",
		DBName:     "kindred",
		JWTSecret:  "dev-secret-change-me",
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.Getenv("CONFIG_FILE") != "" {
		// An explicitly requested file must exist.
		return nil, err
	}

	overrideEnv(&cfg.ServerPort, "SERVER_PORT")
	overrideEnv(&cfg.DBHost, "DB_HOST")
	overrideEnv(&cfg.DBPort, "DB_PORT")
	overrideEnv(&cfg.DBUser, "DB_USER")
	overrideEnv(&cfg.DBPassword, "DB_PASSWORD")
	overrideEnv(&cfg.DBName, "DB_NAME")
	overrideEnv(&cfg.JWTSecret, "JWT_SECRET")

	return cfg, nil
}

func overrideEnv(dst *string, key string) {
	if val, exists := os.LookupEnv(key); exists {
		*dst = val
	}
}
