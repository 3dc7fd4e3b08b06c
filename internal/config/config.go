// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Провайдеры хранения записей.
const (
	ProviderMemory   = "memory"
	ProviderRedis    = "redis"
	ProviderPostgres = "postgres"
	ProviderMongo    = "mongo"
)

// Провайдеры хранения изображений.
const (
	BlobInline = "inline"
	BlobS3     = "s3"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer      `yaml:"http_server"`
	Persistence     `yaml:"persistence"`
	RedisConnection `yaml:"redis_connection"`
	Blob            `yaml:"blob"`
	RabbitMQ        `yaml:"rabbitmq"`
	JWTToken        `yaml:"jwttoken"`
	Admin           `yaml:"admin"`
	Sweeper         `yaml:"sweeper"`
	Report          `yaml:"report"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	CORSOrigins []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-separator:","`
}

// Persistence структура для выбора и настройки внешнего хранилища записей.
type Persistence struct {
	Provider                string        `yaml:"provider" env:"PERSISTENCE_PROVIDER" env-default:"memory"`
	Timeout                 time.Duration `yaml:"timeout" env-default:"5s"`
	FallbackToMock          bool          `yaml:"fallback_to_mock" env:"PERSISTENCE_FALLBACK_TO_MOCK"`
	StorageConnectionString string        `yaml:"storage_connection_string" env:"DATABASE_URL"`
	MigrationsPath          string        `yaml:"migrations_path" env-default:"./migrations"`
	MongoURI                string        `yaml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase           string        `yaml:"mongo_database" env-default:"lendlens"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Blob структура для настройки хранилища изображений.
type Blob struct {
	BlobProvider  string `yaml:"provider" env:"BLOB_PROVIDER" env-default:"inline"`
	MaxUploadSize int64  `yaml:"max_upload_size" env-default:"10485760"`
	S3Bucket      string `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Region      string `yaml:"s3_region" env-default:"us-east-1"`
	S3Endpoint    string `yaml:"s3_endpoint" env:"S3_ENDPOINT"`
	S3AccessKey   string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
	S3SecretKey   string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

// RabbitMQ структура для настройки публикации уведомлений. Пустой URL отключает уведомления.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Admin учётные данные единственного администратора.
type Admin struct {
	AdminEmail        string `yaml:"email" env:"ADMIN_EMAIL" env-default:"admin@lendlens.com"`
	AdminPasswordHash string `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH" env-required:"true"`
}

// Sweeper настройки периодического пересчёта истёкших таймеров.
type Sweeper struct {
	Interval time.Duration `yaml:"interval" env-default:"1s"`
}

// Report ограничение частоты приёма жалоб.
type Report struct {
	RatePerSecond float64 `yaml:"rate_per_second" env-default:"1"`
	Burst         int     `yaml:"burst" env-default:"3"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла, применяет значения по умолчанию и переменные окружения.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность выбранных провайдеров и их настроек.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMemory:
	case ProviderRedis:
		if c.AddressRedis == "" {
			return fmt.Errorf("persistence provider %q requires redis_connection.addressredis", c.Provider)
		}
	case ProviderPostgres:
		if c.StorageConnectionString == "" {
			return fmt.Errorf("persistence provider %q requires storage_connection_string", c.Provider)
		}
	case ProviderMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("persistence provider %q requires mongo_uri", c.Provider)
		}
	default:
		return fmt.Errorf("unknown persistence provider %q", c.Provider)
	}

	switch c.BlobProvider {
	case BlobInline:
	case BlobS3:
		if c.S3Bucket == "" || c.PublicBaseURL == "" {
			return fmt.Errorf("blob provider %q requires s3_bucket and public_base_url", c.BlobProvider)
		}
	default:
		return fmt.Errorf("unknown blob provider %q", c.BlobProvider)
	}

	if c.Interval <= 0 {
		return fmt.Errorf("sweeper interval must be positive, got %s", c.Interval)
	}
	if c.Persistence.Timeout <= 0 {
		return fmt.Errorf("persistence timeout must be positive, got %s", c.Persistence.Timeout)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Persistence:\n"+
			"  Provider: %s\n"+
			"  Timeout: %s\n"+
			"  FallbackToMock: %t\n"+
			"Blob:\n"+
			"  Provider: %s\n"+
			"  Bucket: %s\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"Admin:\n"+
			"  Email: %s\n"+
			"Sweeper:\n"+
			"  Interval: %s\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Provider,
		c.Persistence.Timeout,
		c.FallbackToMock,
		c.BlobProvider,
		c.S3Bucket,
		c.RabbitMQURL != "",
		c.AdminEmail,
		c.Interval,
	)
}
