package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func InitLogger(env string) {
	Log = logrus.New()

	// JSON logs so the platform log pipeline can index fields
	Log.SetFormatter(&logrus.JSONFormatter{})

	Log.SetOutput(os.Stdout)

	if env == "development" {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}
