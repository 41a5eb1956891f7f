package types

import (
	"log"
	"os"
)

type Logger interface {
	Printf(format string, v ...interface{})
}

// compile-time check that `log.Logger` adheres to our `Logger` interface.
var _ Logger = &log.Logger{}

// DefaultLogger returns a `Logger` writing to stdout.
func DefaultLogger() *log.Logger {
	return log.New(os.Stdout, "", log.LstdFlags)
}

func NewLogger(custom Logger) Logger {
	if custom != nil {
		return custom
	}

	return DefaultLogger()
}

// prefixLogger prepends a fixed tag to every line.
type prefixLogger struct {
	prefix string
	target Logger
}

func (l *prefixLogger) Printf(format string, v ...interface{}) {
	l.target.Printf(l.prefix+format, v...)
}

// WithPrefix wraps a logger so every line starts with "[prefix] ".
func WithPrefix(logger Logger, prefix string) Logger {
	return &prefixLogger{prefix: "[" + prefix + "] ", target: NewLogger(logger)}
}
