package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN      string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL      string `env:"RABBITMQ_URL,required=true"`
	RedisURL         string `env:"REDIS_URL,required=true"`
	AutoFillURL      string `env:"AUTOFILL_URL"`
	NotifierURL      string `env:"NOTIFIER_URL"`
	BulkSubmitPerMin int    `env:"BULK_SUBMIT_PER_MIN,default=10"`
	BatchMaxAttempts int    `env:"BATCH_MAX_ATTEMPTS,default=3"`
	BatchTimeoutSec  int    `env:"BATCH_TIMEOUT_SEC,default=600"`
	WorkerPrefetch   int    `env:"WORKER_PREFETCH,default=1"`
	APIPort          int    `env:"API_PORT,default=8080"`
	LogLevel         string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
