package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Logger.SetLevel(logrus.InfoLevel)
}

// Configure switches the log level and, outside debug mode, the JSON formatter.
func Configure(level string, json bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	if json {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

func Info(msg string, fields logrus.Fields) {
	Logger.WithFields(fields).Info(msg)
}

func Error(msg string, err error, fields logrus.Fields) {
	Logger.WithFields(fields).WithError(err).Error(msg)
}

func Debug(msg string, fields logrus.Fields) {
	Logger.WithFields(fields).Debug(msg)
}
