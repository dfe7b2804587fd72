package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	MysqlDSN   string
	RedisAddr  string
	RedisPass  string
	JWTSecret  string
}

var Cfg *Config

func Load() {
	// .env is optional; deployments set the environment directly.
	godotenv.Load()

	Cfg = &Config{
		ServerAddr: ":" + getEnv("PORT", "8080"),
		MysqlDSN:   getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/yumigo?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:  getEnv("REDIS_PASSWORD", ""),
		JWTSecret:  getEnv("JWT_SECRET", "yumigo-secret-key-change-in-production"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
