package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned by Validate when no signing secret is configured
var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is not set")

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		// config/config.env is optional, .env is the usual place
		if _, err := os.Stat("config/config.env"); err == nil {
			if err := godotenv.Load("config/config.env"); err != nil {
				return err
			}
		}
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				return err
			}
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	PORT         int
	DATABASE_URL string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	// JWT Configuration
	JWT_SECRET        string
	JWT_ISSUER        string
	JWT_EXPIRE        time.Duration
	JWT_COOKIE_EXPIRE int // days
	// Redis Configuration
	REDIS_URL string
	// Uploads
	MAX_FILE_UPLOAD  int64
	FILE_UPLOAD_PATH string
	PUBLIC_DIR       string
	PHOTO_STORAGE    string // local, spaces
	// DigitalOcean Spaces Configuration
	DO_SPACES_ACCESS_KEY   string
	DO_SPACES_SECRET_KEY   string
	DO_SPACES_BUCKET       string
	DO_SPACES_REGION       string
	DO_SPACES_ENDPOINT     string
	DO_SPACES_CDN_ENDPOINT string
	// Geocoder
	GEOCODER_PROVIDER string
	GEOCODER_API_KEY  string
	// Security
	ALLOWED_ORIGINS   string
	RATE_LIMIT_MAX    int
	RATE_LIMIT_WINDOW time.Duration
	// Email (password reset)
	SMTP_HOST     string
	SMTP_PORT     int
	SMTP_USERNAME string
	SMTP_PASSWORD string
	FROM_EMAIL    string
	FROM_NAME     string
	// Cron
	CRON_ENABLED bool
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 5000
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       getEnvOrDefault("GO_ENV", "development"),
		PORT:         port,
		DATABASE_URL: os.Getenv("DATABASE_URL"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getEnvOrDefault("DB_HOST", "localhost"),
		DB_PORT:      getEnvOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		// JWT
		JWT_SECRET:        os.Getenv("JWT_SECRET"),
		JWT_ISSUER:        getEnvOrDefault("JWT_ISSUER", "devcamper-api"),
		JWT_EXPIRE:        getDurationOrDefault("JWT_EXPIRE", 30*24*time.Hour),
		JWT_COOKIE_EXPIRE: getIntOrDefault("JWT_COOKIE_EXPIRE", 30),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Uploads
		MAX_FILE_UPLOAD:  int64(getIntOrDefault("MAX_FILE_UPLOAD", 1000000)),
		FILE_UPLOAD_PATH: getEnvOrDefault("FILE_UPLOAD_PATH", "./public/uploads"),
		PUBLIC_DIR:       getEnvOrDefault("PUBLIC_DIR", "./public"),
		PHOTO_STORAGE:    getEnvOrDefault("PHOTO_STORAGE", "local"),
		// DigitalOcean
		DO_SPACES_ACCESS_KEY:   os.Getenv("DO_SPACES_ACCESS_KEY"),
		DO_SPACES_SECRET_KEY:   os.Getenv("DO_SPACES_SECRET_KEY"),
		DO_SPACES_BUCKET:       os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:       os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT:     os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_CDN_ENDPOINT: os.Getenv("DO_SPACES_CDN_ENDPOINT"),
		// Geocoder
		GEOCODER_PROVIDER: getEnvOrDefault("GEOCODER_PROVIDER", "mapquest"),
		GEOCODER_API_KEY:  os.Getenv("GEOCODER_API_KEY"),
		// Security
		ALLOWED_ORIGINS:   getEnvOrDefault("ALLOWED_ORIGINS", "*"),
		RATE_LIMIT_MAX:    getIntOrDefault("RATE_LIMIT_MAX", 100),
		RATE_LIMIT_WINDOW: getDurationOrDefault("RATE_LIMIT_WINDOW", 10*time.Minute),
		// Email
		SMTP_HOST:     os.Getenv("SMTP_HOST"),
		SMTP_PORT:     getIntOrDefault("SMTP_PORT", 587),
		SMTP_USERNAME: os.Getenv("SMTP_USERNAME"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		FROM_EMAIL:    getEnvOrDefault("FROM_EMAIL", "noreply@devcamper.io"),
		FROM_NAME:     getEnvOrDefault("FROM_NAME", "DevCamper"),
		// Cron, enabled unless explicitly turned off
		CRON_ENABLED: os.Getenv("CRON_ENABLED") != "false",
	}

	return envVariables, nil
}

// Validate checks the settings the server cannot start without
func (e *EnviornmentVariable) Validate() error {
	if e.JWT_SECRET == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// IsProduction reports whether GO_ENV is production
func (e *EnviornmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return val
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return val
}
