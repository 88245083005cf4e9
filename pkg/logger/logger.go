package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/echo"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	appLogger     *logrus.Logger
	appLoggerOnce sync.Once
	logFile       io.WriteCloser
	logMutex      sync.Mutex
)

// LogConfig holds log settings
type LogConfig struct {
	BaseDir    string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
	Level      string
	Format     string
}

// DefaultLogConfig returns the default log settings
func DefaultLogConfig() LogConfig {
	return LogConfig{
		BaseDir:    "./logs",
		MaxSize:    100,
		MaxBackups: 30,
		MaxAge:     90,
		Compress:   true,
		Level:      "info",
		Format:     "json",
	}
}

// GetLogger returns a singleton logrus.Logger writing to daily log files
// and stdout
func GetLogger() *logrus.Logger {
	appLoggerOnce.Do(func() {
		config := DefaultLogConfig()

		if format := os.Getenv("LOG_FORMAT"); format != "" {
			config.Format = format
		}
		if level := os.Getenv("LOG_LEVEL"); level != "" {
			config.Level = level
		}
		if dir := os.Getenv("LOG_DIR"); dir != "" {
			config.BaseDir = dir
		}

		appLogger = initLoggerWithConfig(config)
	})
	return appLogger
}

func initLoggerWithConfig(config LogConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch config.Format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	if config.BaseDir != "" {
		setupDailyLogFile(logger, config)
		go dailyLogRotation(logger, config)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

func setupDailyLogFile(logger *logrus.Logger, config LogConfig) {
	logMutex.Lock()
	defer logMutex.Unlock()

	now := time.Now()
	logDir := filepath.Join(config.BaseDir, now.Format("2006/01/02"))
	if err := os.MkdirAll(logDir, 0755); err != nil {
		logger.WithError(err).Error("Failed to create log directory")
		logger.SetOutput(os.Stdout)
		return
	}

	if logFile != nil {
		logFile.Close()
	}

	logPath := filepath.Join(logDir, "app.log")
	lumber := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	logFile = lumber
	logger.SetOutput(io.MultiWriter(lumber, os.Stdout))

	logger.WithField("log_path", logPath).Info("Log file rotated")
}

func dailyLogRotation(logger *logrus.Logger, config LogConfig) {
	for {
		now := time.Now()
		tomorrow := now.AddDate(0, 0, 1)
		midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, now.Location())
		time.Sleep(time.Until(midnight))
		setupDailyLogFile(logger, config)
	}
}

// LoggingMiddleware logs every request with a generated request id
func LoggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		res := c.Response()
		log := GetLogger()

		requestID := generateRequestID()
		c.Set("request_id", requestID)

		err := next(c)
		duration := time.Since(start)

		logFields := logrus.Fields{
			"request_id":  requestID,
			"method":      req.Method,
			"path":        req.URL.Path,
			"status":      res.Status,
			"duration_ms": duration.Milliseconds(),
			"size":        res.Size,
		}

		switch {
		case res.Status >= 500:
			log.WithFields(logFields).Error("Request completed")
		case res.Status >= 400:
			log.WithFields(logFields).Warn("Request completed")
		default:
			log.WithFields(logFields).Info("Request completed")
		}

		if err != nil {
			log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Request error occurred")
		}

		return err
	}
}

func generateRequestID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// RequestLogger returns a per-request log entry
func RequestLogger(c echo.Context) *logrus.Entry {
	log := GetLogger()
	requestID, exists := c.Get("request_id").(string)
	if !exists {
		requestID = "unknown"
	}

	return log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     c.Request().Method,
		"path":       c.Request().URL.Path,
	})
}

// InitGlobalLogger aligns the global logrus instance with the app logger
func InitGlobalLogger() {
	appLogger := GetLogger()

	logrus.SetFormatter(appLogger.Formatter)
	logrus.SetOutput(appLogger.Out)
	logrus.SetLevel(appLogger.Level)
}
