package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
)

var Logger *zap.Logger

// Init initializes the global logger. Production deployments get JSON
// output, everything else gets the human-readable development encoder.
func Init() {
	env := os.Getenv("ENV")

	var err error
	if env == "production" {
		Logger, err = zap.NewProduction()
	} else {
		Logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
}

// L returns the global logger instance.
func L() *zap.Logger {
	if Logger == nil {
		Init()
	}
	return Logger
}

// Close flushes buffered log entries.
func Close() {
	if Logger == nil {
		return
	}
	if err := Logger.Sync(); err != nil {
		log.Printf("failed to flush log entries: %v", err)
	}
}
