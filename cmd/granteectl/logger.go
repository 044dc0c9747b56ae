package main

import (
	"log"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds a logr.Logger writing to a lumberjack-rotated file, the
// same stdr-over-stdlib-log adapter the catalog's default logger uses, but
// pointed at a rotating file instead of stderr.
func newLogger(cfg logConfig) (logr.Logger, func() error) {
	rotate := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	stdr.SetVerbosity(cfg.Verbosity)
	logger := stdr.New(log.New(rotate, "", log.LstdFlags|log.Lshortfile))
	return logger.WithName("granteectl"), rotate.Close
}
