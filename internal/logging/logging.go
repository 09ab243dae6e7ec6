package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type SetupParams struct {
	Level  string
	Output io.Writer // nil keeps logrus' default (stderr)
}

// Setup builds the logger instance the commands hand to their
// collaborators. No package uses the ambient logrus standard logger.
func Setup(params SetupParams) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(GetLevel(params.Level))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "060102-15:04:05",
	})
	if params.Output != nil {
		logger.SetOutput(params.Output)
	}
	return logger
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
