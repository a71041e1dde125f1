package middleware

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"RiderBross/Config"
)

// LogConfig holds configuration for the logging middleware
type LogConfig struct {
	// Enable console logging
	Console bool
	// Log file path, empty disables file logging
	LogFilePath string
	// Include user ID in logs
	IncludeUserID bool
	// Skip logging for paths starting with any of these
	SkipPaths []string
	// Output overrides both console and file, used by tests
	Output io.Writer
}

// DefaultLogConfig returns a default configuration for the logging middleware
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Console:       true,
		LogFilePath:   "logs/requests.log",
		IncludeUserID: true,
		SkipPaths:     []string{"/health", "/static"},
	}
}

func (cfg LogConfig) writer() io.Writer {
	if cfg.Output != nil {
		return cfg.Output
	}

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	if cfg.LogFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0755); err != nil {
			log.Error().Err(err).Msg("error creating logs directory")
		} else if file, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err != nil {
			log.Error().Err(err).Str("path", cfg.LogFilePath).Msg("error opening log file")
		} else {
			writers = append(writers, file)
		}
	}
	return io.MultiWriter(writers...)
}

func (cfg LogConfig) skip(path string) bool {
	for _, prefix := range cfg.SkipPaths {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// LoggingMiddleware writes one JSON line per request
func LoggingMiddleware(config ...LogConfig) fiber.Handler {
	cfg := DefaultLogConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	logger := zerolog.New(cfg.writer()).With().Timestamp().Logger()

	return func(c *fiber.Ctx) error {
		if cfg.skip(c.Path()) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not run yet, report what it will send
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("url", c.OriginalURL()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Int("content_length", len(c.Response().Body()))

		if id := c.Get(fiber.HeaderXRequestID); id != "" {
			event = event.Str("request_id", id)
		}
		if cfg.IncludeUserID {
			if user := CurrentUser(c); user != nil {
				event = event.Uint("user_id", user.Id).Str("username", user.Name)
			}
		}
		if err != nil {
			event = event.Err(err)
		}
		event.Msg("request")

		return err
	}
}

// RequestLogger builds the request logger from the logging config.
func RequestLogger(cfg Config.LoggingConfig) fiber.Handler {
	return LoggingMiddleware(LogConfig{
		Console:       true,
		LogFilePath:   cfg.File,
		IncludeUserID: true,
		SkipPaths:     cfg.SkipPaths,
	})
}
