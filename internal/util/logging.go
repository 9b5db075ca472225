package util

import (
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger/console"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger/file"
)

// InitLogger installs the console logger and, when LOG_FILE is set, a file
// logger next to it. The returned function closes the log file.
func InitLogger() func() {
	level := GetEnv("LOG_LEVEL")
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: GetEnvBool("DEBUG", false),
		Level: level,
		JSON:  GetEnv("LOG_FORMAT") == "json",
	})

	path := GetEnv("LOG_FILE")
	if path == "" {
		logger.Init(consoleLogger)
		return func() {}
	}

	fileLogger, err := file.NewFileLogger(file.FileLoggerParams{Path: path, Level: level})
	if err != nil {
		logger.Init(consoleLogger)
		logger.Warn("Failed to open log file, logging to console only", "path", path, "err", err)
		return func() {}
	}
	logger.Init(consoleLogger, fileLogger)
	return func() { _ = fileLogger.Close() }
}
