package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// InitLogger configures the process-wide structured logger.
func InitLogger(logLevel string, isDevelopment bool) *logrus.Logger {
	l := logrus.New()

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		l.SetLevel(level)
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	l.SetOutput(os.Stdout)

	log = l
	return l
}

// GetLogger returns the global logger, initializing it with defaults if needed.
func GetLogger() *logrus.Logger {
	if log == nil {
		return InitLogger("info", false)
	}
	return log
}

// WithComponent creates a logger entry tagged with a component name.
func WithComponent(component string) *logrus.Entry {
	return GetLogger().WithField("component", component)
}

// WithPlayerContext creates a logger entry with player context.
func WithPlayerContext(playerID, playerName string) *logrus.Entry {
	fields := logrus.Fields{}
	if playerID != "" {
		fields["player_id"] = playerID
	}
	if playerName != "" {
		fields["player_name"] = playerName
	}
	return GetLogger().WithFields(fields)
}

// WithModelContext creates a logger entry with model training context.
func WithModelContext(stat, kind string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"stat":       stat,
		"model_kind": kind,
	})
}
