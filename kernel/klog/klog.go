// Package klog is the kernel's structured logging sink. A freestanding
// kernel can't allocate or assume an OS is underneath it, so it typically
// hand-rolls an allocation-free Printf with a ring buffer that collects
// output until a console is attached. This kernel runs as a hosted Go
// process, so there's no bootstrap gap to buffer across: klog wraps logrus
// directly and defaults its sink to os.Stderr from the moment the package is
// loaded.
package klog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// base is the package-wide logger every kernel component logs through.
var base = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetOutput redirects all kernel logging to w.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// SetLevel adjusts the minimum severity that reaches the sink.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// For returns a logger scoped to a single kernel module, e.g. klog.For("vmm").
func For(module string) *logrus.Entry {
	return base.WithField("module", module)
}
