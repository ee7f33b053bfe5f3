package trackLog

import (
	"calorie-tracker/services/log"

	"github.com/sirupsen/logrus"
)

var logTracker = logrus.NewEntry(logrus.StandardLogger())

// LogTrackInit replaces the stdout-only default tracker with the configured
// logger. Tests never call it.
func LogTrackInit() {
	var trackerService log.LogService
	temp := trackerService.LoggerInit("tracker")
	logTracker = temp.WithFields(logrus.Fields{"task": "track", "service": "calorie-tracker"})
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return logTracker.WithFields(fields)
}

func Info(message string) {
	logTracker.Info(message)
}

func Error(message string) {
	logTracker.Error(message)
}
