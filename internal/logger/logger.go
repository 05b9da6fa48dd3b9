// Package logger wires zap for the whole service.  Development mode
// gets a console encoder, anything else the production JSON encoder.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service-wide sugared logger.  level falls back to
// info when it does not parse.
func New(env, level string) *zap.SugaredLogger {
	var cfg zap.Config
	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	log, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		// Config above is static; Build only fails on bad output paths.
		panic(err)
	}
	return log.Sugar()
}
