// Package logging builds the zap-backed logr.Logger used by the freqtrack
// command and its tests.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logr verbosity levels. zapr maps V(n) to zap level -n.
const (
	DEBUG = 1
	TRACE = 2
)

// ParseLevel converts a level name to a zap level. Besides the zap names it
// accepts "trace", which enables V(TRACE) output.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "trace":
		return zapcore.Level(-TRACE), nil
	case "debug":
		return zapcore.Level(-DEBUG), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("logging: unknown level %q", level)
	}
	return lvl, nil
}

// New returns a logr.Logger at the given level. Development mode uses the
// console encoder and adds stack traces on warnings.
func New(level string, development bool, opts ...zap.Option) (logr.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Sampling = nil

	zl, err := zc.Build(opts...)
	if err != nil {
		return logr.Discard(), fmt.Errorf("logging: build zap logger: %w", err)
	}
	return zapr.NewLogger(zl), nil
}

// NewTestLogger creates a new Zap logger using the dev mode.
func NewTestLogger() logr.Logger {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))
	zl, err := zc.Build(zap.AddCaller())
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zl)
}
