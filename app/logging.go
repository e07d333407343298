package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// log is the package-level diagnostic logger. It writes structured,
// leveled output to stderr and never touches stdout, which is reserved
// for the spec-mandated result output (see formatter.go).
var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.SetLevel(logrus.WarnLevel)
	return l
}

// enableVerboseLogging raises the logger to debug level; wired from the
// CLI's -v/--verbose flag.
func enableVerboseLogging() {
	log.SetLevel(logrus.DebugLevel)
}
