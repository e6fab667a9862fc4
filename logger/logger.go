package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. Production logs are JSON with ISO-8601
// timestamps; anything else gets the colored development console.
func New(env string) (*zap.Logger, error) {
	return NewWithWriter(env, nil)
}

// NewWithWriter is New with every entry also written, as JSON, to extra
// (typically a CloudWatch Logs writer). A nil extra is ignored.
func NewWithWriter(env string, extra io.Writer) (*zap.Logger, error) {
	config := configFor(env)
	if extra == nil {
		return config.Build()
	}

	level := zap.NewAtomicLevelAt(config.Level.Level())
	console := zapcore.NewCore(encoderFor(env, config.EncoderConfig), zapcore.AddSync(os.Stdout), level)
	shipped := zapcore.NewCore(zapcore.NewJSONEncoder(config.EncoderConfig), zapcore.AddSync(extra), level)

	return zap.New(zapcore.NewTee(console, shipped), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func configFor(env string) zap.Config {
	if env == "production" {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return config
	}
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return config
}

func encoderFor(env string, cfg zapcore.EncoderConfig) zapcore.Encoder {
	if env == "production" {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}
