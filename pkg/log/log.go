// Copyright 2020 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is a thin wrapper around zap that provides a key/value logging
// interface.
//
// Log calls take a message and an even number of context arguments:
//
//	logger.Debug("Dropped attribute", "oid", oid, "tag", tag)
//
// Before Setup is called, all log entries are discarded.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scionproto/dnpki/pkg/private/serrors"
)

// Level is the log level.
type Level zapcore.Level

// The different log levels.
const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
)

// ParseLevel parses the textual representation of a log level.
func ParseLevel(lvl string) (Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(lvl))); err != nil {
		return 0, serrors.Wrap("parsing log level", err, "level", lvl)
	}
	switch l {
	case zapcore.DebugLevel, zapcore.InfoLevel, zapcore.ErrorLevel:
		return Level(l), nil
	default:
		return 0, serrors.New("unsupported log level", "level", lvl)
	}
}

func (l Level) String() string {
	return zapcore.Level(l).String()
}

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// Config configures the logging.
type Config struct {
	// Console configures the console logging.
	Console ConsoleConfig
}

// ConsoleConfig is the config for the console logger.
type ConsoleConfig struct {
	// Level of console logging (defaults to error).
	Level string
	// Format of the console logging, either human or json (defaults to
	// human).
	Format string
	// DisableCaller stops annotating logs with the calling function's file
	// name and line number.
	DisableCaller bool
}

// InitDefaults populates unset fields in cfg to their default values (if
// they have one).
func (c *ConsoleConfig) InitDefaults() {
	if c.Level == "" {
		c.Level = "error"
	}
	if c.Format == "" {
		c.Format = "human"
	}
}

// Setup configures the logging library with the given config.
func Setup(cfg Config, opts ...Option) error {
	o := applyOptions(opts)
	cfg.Console.InitDefaults()

	lvl, err := ParseLevel(cfg.Console.Level)
	if err != nil {
		return err
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	switch cfg.Console.Format {
	case "human":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return serrors.New("unsupported log format", "format", cfg.Console.Format)
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(o.writer())),
		zap.NewAtomicLevelAt(zapcore.Level(lvl)))

	zopts := o.zapOptions()
	if !cfg.Console.DisableCaller {
		zopts = append(zopts, zap.AddCaller())
	}
	zap.ReplaceGlobals(zap.New(core, zopts...))
	return nil
}

// Flush writes the logs to the underlying buffer.
func Flush() {
	_ = zap.L().Sync()
}

// Discard sets the logger up to discard all log entries. This is useful for
// testing.
func Discard() {
	zap.ReplaceGlobals(zap.NewNop())
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// Root returns the root logger. It's a logger without any context.
func Root() Logger {
	return &logger{logger: zap.L()}
}

// FromZap returns a Logger that writes to l.
func FromZap(l *zap.Logger) Logger {
	return &logger{logger: l}
}

type logger struct {
	logger *zap.Logger
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprint(ctx[i])
		}
		fields = append(fields, zap.Any(key, ctx[i+1]))
	}
	return fields
}
