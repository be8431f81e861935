package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. With an empty logsDirectory it writes to stdout,
// otherwise to a per-run file rotated by lumberjack.
func New(logsDirectory string) (*zap.Logger, error) {
	var writeSyncer zapcore.WriteSyncer
	if logsDirectory == "" {
		writeSyncer = zapcore.Lock(os.Stdout)
	} else {
		if err := os.MkdirAll(logsDirectory, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}

		runTimestamp := time.Now().UTC().Format("2006-01-02T15-04-05")
		writeSyncer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   fmt.Sprintf("%s/courier-api-%s.log", logsDirectory, runTimestamp),
			MaxSize:    100, // MB
			MaxBackups: 7,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	})

	core := zapcore.NewCore(encoder, writeSyncer, zap.InfoLevel)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
