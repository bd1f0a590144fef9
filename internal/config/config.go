package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

const (
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerRequestTimeout  = 60 * time.Second
	ServerShutdownTimeout = 10 * time.Second
	DBPingTimeout         = 5 * time.Second

	// MaxBodyBytes bounds request bodies; commits carry file contents.
	MaxBodyBytes = 2 << 20
)

type Config struct {
	Port                   int    `env:"PORT" envDefault:"8080"`
	DatabaseURL            string `env:"DATABASE_URL,required"`
	RedisURL               string `env:"REDIS_URL,required"`
	LLMServiceURL          string `env:"LLM_SERVICE_URL" envDefault:"http://localhost:5001"`
	NotifyServiceURL       string `env:"NOTIFY_SERVICE_URL" envDefault:"http://localhost:5004"`
	GitHubToken            string `env:"GITHUB_TOKEN"`
	GitHubAPIURL           string `env:"GITHUB_API_URL"`
	JWTSecret              string `env:"JWT_SECRET" envDefault:"supersecret"`
	ClientURL              string `env:"CLIENT_URL" envDefault:"*"`
	LogLevel               string `env:"LOG_LEVEL" envDefault:"info"`
	UpstreamTimeoutSeconds int    `env:"UPSTREAM_TIMEOUT_SECONDS" envDefault:"30"`
	SideEffectTimeoutSecs  int    `env:"SIDE_EFFECT_TIMEOUT_SECONDS" envDefault:"15"`
	RateLimitPerMinute     int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"100"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

func (c *Config) SideEffectTimeout() time.Duration {
	return time.Duration(c.SideEffectTimeoutSecs) * time.Second
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if c.JWTSecret == "supersecret" {
			log.Warn().Msg("JWT_SECRET uses the default value in production: tokens are forgeable")
		}
		if c.GitHubToken == "" {
			log.Warn().Msg("GITHUB_TOKEN is empty in production: commit and pull-request actions will fail")
		}
		if c.ClientURL == "*" {
			log.Warn().Msg("CLIENT_URL is a wildcard in production: consider restricting CORS origins")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
