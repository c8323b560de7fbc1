// Package aptlog configures apex/log handlers, including an optional
// rotating JSON log file.
package aptlog

import (
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerOpts describes the logger options.
type LoggerOpts struct {
	// Filename is the name of log file. Empty disables file logging.
	Filename string
	// MaxSize is the maximum size in megabytes of the log file
	// before it gets rotated.
	MaxSize int
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int
	// MaxAge is the maximum number of days to retain old log files
	// based on the timestamp encoded in their filename.
	MaxAge int
	// Verbose enables debug messages.
	Verbose bool
}

// Logger is the configured log sink.
type Logger struct {
	// ljLogger is an io.WriteCloser that writes to the specified filename.
	ljLogger *lumberjack.Logger
	// opts describes the parameters that were used to create the logger.
	opts LoggerOpts
	// handler receives log entries.
	handler log.Handler
}

// NewLogger creates a logger writing human readable messages to console and
// JSON entries to the log file, if it is set.
func NewLogger(opts LoggerOpts, console io.Writer) *Logger {
	if console == nil {
		console = os.Stderr
	}
	logger := &Logger{opts: opts}
	consoleHandler := cli.New(console)
	if opts.Filename == "" {
		logger.handler = consoleHandler
		return logger
	}

	logger.ljLogger = &lumberjack.Logger{
		Filename:   opts.Filename,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   false,
		LocalTime:  true,
	}
	logger.handler = multi.New(consoleHandler, json.New(logger.ljLogger))
	return logger
}

// Setup makes the logger the default apex/log handler.
func (logger *Logger) Setup() {
	log.SetHandler(logger.handler)
	if logger.opts.Verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// Close implements io.Closer, and closes the current logfile.
func (logger *Logger) Close() error {
	if logger.ljLogger == nil {
		return nil
	}

	return logger.ljLogger.Close()
}
