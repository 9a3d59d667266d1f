package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL builds a database URL suitable for golang-migrate.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// DSN builds a GORM/pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// KafkaConfig holds Kafka broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// StripeConfig holds payment processor settings.
type StripeConfig struct {
	APIKey string
}

// StorageConfig holds Cloudinary blob storage settings.
type StorageConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// EmailConfig holds the transactional email API settings.
type EmailConfig struct {
	BaseURL string
	APIKey  string
}

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	DBConfig      DatabaseConfig
	KafkaConfig   KafkaConfig
	RedisConfig   RedisConfig
	JWTConfig     JWTConfig
	StripeConfig  StripeConfig
	StorageConfig StorageConfig
	EmailConfig   EmailConfig
}

// Load reads configuration from environment variables with the RAKB prefix.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RAKB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "rakb")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "rakb")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "rakb-")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("EMAIL_API_URL", "")

	cfg := &ServiceConfig{
		Port:   ":" + v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		StripeConfig: StripeConfig{
			APIKey: v.GetString("STRIPE_API_KEY"),
		},
		StorageConfig: StorageConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			Folder:    v.GetString("CLOUDINARY_FOLDER"),
		},
		EmailConfig: EmailConfig{
			BaseURL: v.GetString("EMAIL_API_URL"),
			APIKey:  v.GetString("EMAIL_API_KEY"),
		},
	}

	if cfg.JWTConfig.Secret == "" && cfg.AppEnv == "production" {
		return nil, fmt.Errorf("RAKB_JWT_SECRET is required in production")
	}

	return cfg, nil
}
