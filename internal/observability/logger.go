// Package observability builds the agent's structured logger: a console
// core for the operator and a JSON file core with size-based rotation.
package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mj1618/desktop-agent/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName returns the dated log file path for the given day,
// e.g. logs/desktop-agent-2025-01-31.log.
func LogFileName(cfg config.LoggerConfig, day time.Time) string {
	name := cfg.ServiceName
	if name == "" {
		name = "desktop-agent"
	}
	return filepath.Join(cfg.Dir, fmt.Sprintf("%s-%s.log", name, day.Format("2006-01-02")))
}

// NewLogger builds a logger from cfg. Console output goes to consoleWriter at
// cfg.ConsoleLevel; when cfg.Dir is set, everything at cfg.Level is also
// written as JSON to a dated, rotated file. The returned func flushes and
// closes the file sink.
func NewLogger(cfg config.LoggerConfig, consoleWriter zapcore.WriteSyncer) (*zap.Logger, func(), error) {
	fileLevel := parseLevel(cfg.Level, zap.DebugLevel)
	consoleLevel := parseLevel(cfg.ConsoleLevel, zap.WarnLevel)

	cores := []zapcore.Core{
		zapcore.NewCore(getEncoder(cfg.Format), consoleWriter, consoleLevel),
	}

	var sink *lumberjack.Logger
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		sink = &lumberjack.Logger{
			Filename:   LogFileName(cfg, time.Now()),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(getEncoder("json"), zapcore.AddSync(sink), fileLevel))
	}

	options := []zap.Option{zap.AddStacktrace(zap.DPanicLevel)}
	if cfg.AddSource {
		options = append(options, zap.AddCaller())
	}
	logger := zap.New(zapcore.NewTee(cores...), options...)
	if cfg.ServiceName != "" {
		logger = logger.Named(cfg.ServiceName)
	}

	cleanup := func() {
		Sync(logger)
		if sink != nil {
			_ = sink.Close()
		}
	}
	return logger, cleanup, nil
}

// Sync flushes buffered entries, ignoring the errors some terminals return
// for fsync on stdout/stderr.
func Sync(logger *zap.Logger) {
	if err := logger.Sync(); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "sync /dev/std") &&
			!strings.Contains(msg, "invalid argument") &&
			!strings.Contains(msg, "inappropriate ioctl") &&
			!strings.Contains(msg, "operation not supported") {
			fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
		}
	}
}

func parseLevel(s string, fallback zapcore.Level) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return fallback
	}
	return level
}

func getEncoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")

	if format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(name + ".")
		}
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}
