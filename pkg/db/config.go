package db

import (
	"github.com/kelseyhightower/envconfig"
)

type PostgresConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"toystore"`
	Password string `envconfig:"DB_PASSWORD" default:""`
	DBName   string `envconfig:"DB_NAME" default:"toystore"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	MaxOpenConns       int `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns       int `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetimeMin int `envconfig:"DB_CONN_MAX_LIFETIME_MINUTES" default:"60"`
}

func LoadPostgresConfig() (PostgresConfig, error) {
	var cfg PostgresConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return PostgresConfig{}, err
	}
	return cfg, nil
}
