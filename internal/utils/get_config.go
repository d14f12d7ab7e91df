package utils

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	AppPort       string `yaml:"APP_PORT"`
	AppURL        string `yaml:"APP_URL"`
	RateLimitMax  string `yaml:"RATE_LIMIT_MAX"`
	CORSOrigins   string `yaml:"CORS_ORIGINS"`
	AccessLogFile string `yaml:"ACCESS_LOG_FILE"`
	LogLevel      string `yaml:"LOG_LEVEL"`
	LogFormat     string `yaml:"LOG_FORMAT"`

	// Database configuration
	DBDriver   string `yaml:"DB_DRIVER"`
	DBDSN      string `yaml:"DB_DSN"`
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// JWT and token revocation
	JWTSecret     string `yaml:"JWT_SECRET"`
	JWTTTLMinutes string `yaml:"JWT_TTL_MINUTES"`
	RedisAddr     string `yaml:"REDIS_ADDR"`
	RedisPassword string `yaml:"REDIS_PASSWORD"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// Object storage configuration
	StorageDriver  string `yaml:"STORAGE_DRIVER"`
	AWSS3Bucket    string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region    string `yaml:"AWS_S3_REGION"`
	AWSAccessKey   string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey   string `yaml:"AWS_SECRET_KEY"`
	MinioEndpoint  string `yaml:"MINIO_ENDPOINT"`
	MinioAccessKey string `yaml:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `yaml:"MINIO_SECRET_KEY"`
	MinioBucket    string `yaml:"MINIO_BUCKET"`
	MinioUseSSL    string `yaml:"MINIO_USE_SSL"`
}

var (
	config   Config
	configMu sync.RWMutex
)

var defaults = map[string]string{
	"APP_PORT":        "8080",
	"DB_DRIVER":       "postgres",
	"JWT_TTL_MINUTES": "1440",
	"STORAGE_DRIVER":  "none",
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",
	"ACCESS_LOG_FILE": "./logs/app.log",
	"RATE_LIMIT_MAX":  "20",
	"CORS_ORIGINS":    "*",
	"SMTP_PORT":       "587",
}

// LoadConfig reads config.yaml and .env from the working directory.
func LoadConfig() error {
	return LoadConfigFrom("config.yaml", ".env")
}

// LoadConfigFrom reads the YAML file at path, then the dotenv file. Both are
// optional. Process environment variables win over either file.
func LoadConfigFrom(path string, envFile string) error {
	var c Config

	file, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err == nil {
		if err := yaml.Unmarshal(file, &c); err != nil {
			return err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	configMu.Lock()
	config = c
	configMu.Unlock()
	return nil
}

// SetConfig overrides a single key in the loaded configuration.
func SetConfig(key, value string) {
	configMu.Lock()
	defer configMu.Unlock()
	if f := field(&config, key); f != nil {
		*f = value
	}
}

func GetConfig(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	configMu.RLock()
	f := field(&config, key)
	var v string
	if f != nil {
		v = *f
	}
	configMu.RUnlock()

	if v == "" {
		return defaults[key]
	}
	return v
}

func GetConfigInt(key string) int {
	v, err := strconv.Atoi(GetConfig(key))
	if err != nil {
		if d, derr := strconv.Atoi(defaults[key]); derr == nil {
			return d
		}
		return 0
	}
	return v
}

func GetConfigBool(key string) bool {
	b, _ := strconv.ParseBool(GetConfig(key))
	return b
}

func field(c *Config, key string) *string {
	switch key {
	case "APP_PORT":
		return &c.AppPort
	case "APP_URL":
		return &c.AppURL
	case "RATE_LIMIT_MAX":
		return &c.RateLimitMax
	case "CORS_ORIGINS":
		return &c.CORSOrigins
	case "ACCESS_LOG_FILE":
		return &c.AccessLogFile
	case "LOG_LEVEL":
		return &c.LogLevel
	case "LOG_FORMAT":
		return &c.LogFormat
	case "DB_DRIVER":
		return &c.DBDriver
	case "DB_DSN":
		return &c.DBDSN
	case "DB_USER":
		return &c.DBUser
	case "DB_NAME":
		return &c.DBName
	case "DB_PASSWORD":
		return &c.DBPassword
	case "DB_PORT":
		return &c.DBPort
	case "DB_HOST":
		return &c.DBHost
	case "JWT_SECRET":
		return &c.JWTSecret
	case "JWT_TTL_MINUTES":
		return &c.JWTTTLMinutes
	case "REDIS_ADDR":
		return &c.RedisAddr
	case "REDIS_PASSWORD":
		return &c.RedisPassword
	case "SMTP_HOST":
		return &c.SMTPHost
	case "SMTP_PORT":
		return &c.SMTPPort
	case "SMTP_SENDER_NAME":
		return &c.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return &c.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return &c.SMTPAuthPassword
	case "STORAGE_DRIVER":
		return &c.StorageDriver
	case "AWS_S3_BUCKET":
		return &c.AWSS3Bucket
	case "AWS_S3_REGION":
		return &c.AWSS3Region
	case "AWS_ACCESS_KEY":
		return &c.AWSAccessKey
	case "AWS_SECRET_KEY":
		return &c.AWSSecretKey
	case "MINIO_ENDPOINT":
		return &c.MinioEndpoint
	case "MINIO_ACCESS_KEY":
		return &c.MinioAccessKey
	case "MINIO_SECRET_KEY":
		return &c.MinioSecretKey
	case "MINIO_BUCKET":
		return &c.MinioBucket
	case "MINIO_USE_SSL":
		return &c.MinioUseSSL
	default:
		return nil
	}
}
