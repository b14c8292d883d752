package core

// log.go – package-level structured logger, matching tokens.go's
// `log "github.com/sirupsen/logrus"` import alias used elsewhere in
// the teacher's core package.

import (
	"io"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

type logFields = logrus.Fields

func init() {
	// Silent by default, matching security.go's secLogger :=
	// log.New(io.Discard, ...) pattern; callers wire real output via
	// SetOutput from the host binary.
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.InfoLevel)
}

// SetOutput redirects the package logger, e.g. to os.Stdout from a CLI
// entrypoint or io.Discard in tests.
func SetOutput(w io.Writer) { log.SetOutput(w) }

// SetLevel adjusts the package logger's verbosity.
func SetLevel(level logrus.Level) { log.SetLevel(level) }
