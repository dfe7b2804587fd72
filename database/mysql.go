package database

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"yumigo/config"
	"yumigo/logger"
)

var DB *sql.DB

func Connect() error {
	var err error
	DB, err = sql.Open("mysql", config.Cfg.MysqlDSN)
	if err != nil {
		return err
	}

	if err = DB.Ping(); err != nil {
		return err
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(5)

	logger.L().Info("database connected")
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}

func CreateTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id             VARCHAR(36) PRIMARY KEY,
			username       VARCHAR(50) NOT NULL,
			email          VARCHAR(255) NOT NULL,
			bio            VARCHAR(500),
			avatar         VARCHAR(255),
			password       VARCHAR(255) NOT NULL,
			following_ids  JSON NOT NULL,
			follower_count INT NOT NULL DEFAULT 0,
			recipe_count   INT NOT NULL DEFAULT 0,
			created_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uk_username (username),
			UNIQUE KEY uk_email (email)
		)`,
		`CREATE TABLE IF NOT EXISTS recipes (
			id           VARCHAR(36) PRIMARY KEY,
			author_id    VARCHAR(36) NOT NULL,
			title        VARCHAR(100) NOT NULL,
			description  TEXT,
			category     VARCHAR(50),
			image        VARCHAR(255),
			ingredients  JSON NOT NULL,
			steps        JSON NOT NULL,
			like_count   INT NOT NULL DEFAULT 0,
			rating_sum   INT NOT NULL DEFAULT 0,
			rating_count INT NOT NULL DEFAULT 0,
			created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_author (author_id),
			INDEX idx_category_time (category, created_at),
			INDEX idx_created (created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id         VARCHAR(36) PRIMARY KEY,
			user_id    VARCHAR(36) NOT NULL,
			recipe_id  VARCHAR(36) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uk_user_recipe (user_id, recipe_id),
			INDEX idx_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS recipe_likes (
			id         VARCHAR(36) PRIMARY KEY,
			user_id    VARCHAR(36) NOT NULL,
			recipe_id  VARCHAR(36) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uk_user_recipe (user_id, recipe_id),
			INDEX idx_recipe (recipe_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			id         VARCHAR(36) PRIMARY KEY,
			user_id    VARCHAR(36) NOT NULL,
			recipe_id  VARCHAR(36) NOT NULL,
			score      TINYINT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uk_user_recipe (user_id, recipe_id),
			INDEX idx_recipe (recipe_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id         VARCHAR(36) PRIMARY KEY,
			recipe_id  VARCHAR(36) NOT NULL,
			user_id    VARCHAR(36) NOT NULL,
			content    VARCHAR(1000) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_recipe_time (recipe_id, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id         VARCHAR(36) PRIMARY KEY,
			user_id    VARCHAR(36) NOT NULL,
			actor_id   VARCHAR(36) NOT NULL,
			type       ENUM('follow', 'like', 'comment', 'rating') NOT NULL,
			recipe_id  VARCHAR(36),
			message    VARCHAR(255),
			is_read    TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_user_time (user_id, created_at)
		)`,
	}

	for _, table := range tables {
		if _, err := DB.Exec(table); err != nil {
			return err
		}
	}

	logger.L().Info("database tables ready", zap.Int("tables", len(tables)))
	return nil
}
