// Package logger builds the zerolog logger used by personapi.
//
//	logData, err := logger.New().WithLevel("debug").WithFormat("console").Make()
//	if err != nil {
//		return err
//	}
//	defer logData.Close()
//	logData.Logger.Info().Msg("ready")
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	permission = 0664

	FormatJSON    = "json"
	FormatConsole = "console"
)

type LogBuild struct {
	writer io.Writer
	path   string
	level  string
	format string
}

type LogData struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

func New() *LogBuild {
	return &LogBuild{}
}

// FromPath appends log lines to the file at path instead of the writer.
func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// WithLevel sets the minimum level by name ("debug", "info", ...). Empty
// means info.
func (build *LogBuild) WithLevel(level string) *LogBuild {
	build.level = level
	return build
}

// WithFormat picks FormatJSON (the default) or FormatConsole.
func (build *LogBuild) WithFormat(format string) *LogBuild {
	build.format = format
	return build
}

func (build *LogBuild) Make() (logData *LogData, err error) {
	level := zerolog.InfoLevel
	if build.level != "" {
		level, err = zerolog.ParseLevel(build.level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", build.level, err)
		}
	}

	logData = new(LogData)
	var w io.Writer = os.Stderr
	if build.writer != nil {
		w = build.writer
	}
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		w = zerolog.SyncWriter(logData.LogFile)
	}

	switch build.format {
	case "", FormatJSON:
	case FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, NoColor: build.path != ""}
	default:
		if logData.LogFile != nil {
			_ = logData.LogFile.Close()
		}
		return nil, fmt.Errorf("invalid log format %q", build.format)
	}

	logData.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logData, nil
}

// Close closes the log file, if any.
func (logData *LogData) Close() error {
	if logData.LogFile == nil {
		return nil
	}
	return logData.LogFile.Close()
}
