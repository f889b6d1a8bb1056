package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Env           string
	Level         string
	Dir           string
	RetentionDays int
}

// New builds the application logger. Production uses JSON, everything else
// the console encoder. Entries go to stdout and, when Dir is set, to a daily
// app-YYYY-MM-DD.log file. The returned func flushes and closes the file.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
		level = zapcore.InfoLevel
	}

	var encCfg zapcore.EncoderConfig
	production := opts.Env == "production"
	if production {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}

	newEncoder := func(color bool) zapcore.Encoder {
		if production {
			return zapcore.NewJSONEncoder(encCfg)
		}
		cfg := encCfg
		if color {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(cfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(true), zapcore.Lock(os.Stdout), level),
	}
	var file *DailyFile
	if opts.Dir != "" {
		var err error
		file, err = OpenDailyFile(opts.Dir, opts.RetentionDays)
		if err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(newEncoder(false), file, level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	undo := zap.RedirectStdLog(log)
	return log, func() {
		_ = log.Sync()
		undo()
		if file != nil {
			_ = file.Close()
		}
	}, nil
}
