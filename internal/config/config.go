// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Media
	UploadDir     string
	AssetsDir     string
	UploadMaxSize int64
	ImportTimeout time.Duration
	ImportMaxSize int64

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 72*time.Hour)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 10)
	cfg.UploadDir = getEnvString("UPLOAD_DIR", "./uploads")
	cfg.AssetsDir = getEnvString("ASSETS_DIR", "./assets")
	cfg.UploadMaxSize = getEnvInt64("UPLOAD_MAX_SIZE", 32<<20)
	cfg.ImportTimeout = getEnvDuration("IMPORT_TIMEOUT", 10*time.Second)
	cfg.ImportMaxSize = getEnvInt64("IMPORT_MAX_SIZE", 10<<20)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// PlaceholderImageURL は画像未指定時に使用するプレースホルダー画像のURLを返す。
func (c *Config) PlaceholderImageURL() string {
	return c.BaseURL + "/assets/placeholder.jpeg"
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
