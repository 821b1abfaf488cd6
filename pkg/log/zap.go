// This is a wrapper for the zap framework
// no SugerLogger, Only Logger
// example:
//
//	log.Init(log.Options{File: "./logs/moongazing.log", Level: "info"})
//	log.Log().Info("request", zap.String("path", "/tasks"))
package log

import (
	"os"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	defaultLogFileName = "./logs/moongazing.log"

	defaultLevel = zapcore.InfoLevel

	log *zap.Logger

	logOnce sync.Once
)

type Options struct {
	// File is the rotating log file. Empty uses ./logs/moongazing.log.
	File string
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Stdout also writes entries to the console.
	Stdout bool
}

// Init builds the process logger. Only the first call has an effect;
// Log() without Init uses the defaults.
func Init(opt Options) *zap.Logger {
	logOnce.Do(func() {
		log = build(opt)
	})
	return log
}

// singleton pattern
func Log() *zap.Logger {
	return Init(Options{})
}

func build(opt Options) *zap.Logger {
	level := defaultLevel
	if opt.Level != "" {
		if err := level.Set(opt.Level); err != nil {
			level = defaultLevel
		}
	}
	core := zapcore.NewCore(getEncoder(), getLogWriter(opt), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(0))
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func getEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.LineEnding = zapcore.DefaultLineEnding
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderConfig.EncodeTime = timeEncoder
	encoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
	encoderConfig.EncodeName = zapcore.FullNameEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05"))
}

func getLogWriter(opt Options) zapcore.WriteSyncer {
	name := opt.File
	if name == "" {
		name = defaultLogFileName
	}
	lumberJackLogger := &lumberjack.Logger{
		Filename:   name,
		MaxSize:    60,
		MaxBackups: 6,
		MaxAge:     60,
		Compress:   false,
	}
	if opt.Stdout {
		return zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), zapcore.AddSync(lumberJackLogger))
	}
	return zapcore.AddSync(lumberJackLogger)
}
