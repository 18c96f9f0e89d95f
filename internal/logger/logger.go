// Package logger builds the zap loggers used by the command line tool.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects level, encoding and destination of log output.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // console, json
	Output     string // stderr, stdout, file, both
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days

	// Writer replaces stderr/stdout when set; used by tests.
	Writer io.Writer
}

// DefaultConfig logs warnings and errors to stderr.
func DefaultConfig() *Config {
	return &Config{Level: "warn", Format: "console", Output: "stderr"}
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// New creates a logger from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "", "console":
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if cfg.Writer != nil {
			encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	switch cfg.Output {
	case "", "stderr", "stdout", "file", "both":
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	var cores []zapcore.Core
	if cfg.Output != "file" {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(console(cfg)), level))
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("log output %q needs a file path", cfg.Output)
		}
		writer := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(writer), level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func console(cfg *Config) io.Writer {
	switch {
	case cfg.Writer != nil:
		return cfg.Writer
	case cfg.Output == "stdout":
		return os.Stdout
	default:
		return os.Stderr
	}
}
