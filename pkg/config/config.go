package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port                string `envconfig:"PORT" default:"8080"`
	LogLevel            string `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret           string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	FallbackShippingFee string `envconfig:"FALLBACK_SHIPPING_FEE" default:"30000"`
	CartLineTTLHours    int    `envconfig:"CART_LINE_TTL_HOURS" default:"72"`
	CartSweepMinutes    int    `envconfig:"CART_SWEEP_MINUTES" default:"30"`
	RuleCacheTTLSeconds int    `envconfig:"RULE_CACHE_TTL_SECONDS" default:"60"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
