package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type key string

const (
	KeyLogger = key("logger")
)

type Config struct {
	Service  Service
	Postgres Postgres
	Kafka    Kafka
	Room     Room
	Logger   Logger
	Platform Platform
}

type Service struct {
	Name string `env:"SERVICE_NAME" env-default:"room-service"`
	Port string `env:"SERVICE_PORT" env-default:"8080"`
}

type Postgres struct {
	User     string `env:"POSTGRES_USER" env-required:"true"`
	Password string `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database string `env:"POSTGRES_DB" env-required:"true"`
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `env:"POSTGRES_PORT" env-default:"5432"`
}

type Kafka struct {
	Broker string `env:"KAFKA_BROKER" env-default:"localhost:9092"`
	Topic  string `env:"KAFKA_ROOM_TOPIC" env-default:"room-events"`
}

type Room struct {
	// Lifetime is the message visibility window.
	Lifetime time.Duration `env:"MESSAGE_LIFETIME" env-default:"2m"`
	// FetchLimit caps the bounded initial fetch.
	FetchLimit int `env:"FETCH_LIMIT" env-default:"100"`
	// PurgeInterval enables the server-side scheduled purge when > 0.
	// Left at zero, expired rows are removed only by client-triggered purges.
	PurgeInterval time.Duration `env:"PURGE_INTERVAL" env-default:"0"`
}

type Logger struct {
	Host string `env:"LOGGER_HOST"`
	Port string `env:"LOGGER_PORT"`
}

type Platform struct {
	Env string `env:"ENV" env-default:"dev"`
}

func MustLoad() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	return cfg
}
