package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var sugar *zap.SugaredLogger

// Init builds the global logger. When logFile is non-empty, output is
// duplicated to a rotated file.
func Init(logFile string) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	level := zapcore.InfoLevel
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}
	if logFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotated), level))
	}

	sugar = zap.New(zapcore.NewTee(cores...)).Sugar()
}

func get() *zap.SugaredLogger {
	if sugar == nil {
		Init("")
	}
	return sugar
}

func Debug(format string, args ...interface{}) { get().Debugf(format, args...) }
func Info(format string, args ...interface{})  { get().Infof(format, args...) }
func Warn(format string, args ...interface{})  { get().Warnf(format, args...) }
func Error(format string, args ...interface{}) { get().Errorf(format, args...) }

// Sync flushes buffered entries; call on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
