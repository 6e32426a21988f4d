// Package logger is the process-wide log used by the WDA client, the keyword
// library and the suite runner. Nothing is written until Init is called.
package logger

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger *logrus.Logger
	logFile      *lumberjack.Logger
	mu           sync.Mutex
)

func init() {
	globalLogger = newLogger(io.Discard)
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "15:04:05.000000",
		FullTimestamp:   true,
		DisableColors:   true,
		DisableSorting:  true,
	})
	return l
}

// Init initializes the global logger with the specified log file path.
// The file is rotated once it grows past 20 MB.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logPath == "" {
		return fmt.Errorf("log file path is empty")
	}

	// Close previous log file if exists
	if logFile != nil {
		logFile.Close()
	}

	logFile = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    20,
		MaxBackups: 3,
	}
	level := globalLogger.GetLevel()
	globalLogger = newLogger(logFile)
	globalLogger.SetLevel(level)

	return nil
}

// InitWriter points the global logger at w. Used by tests and by callers
// that embed the library in another process.
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	level := globalLogger.GetLevel()
	globalLogger = newLogger(w)
	globalLogger.SetLevel(level)
}

// SetVerbose enables or disables debug output.
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()

	if verbose {
		globalLogger.SetLevel(logrus.DebugLevel)
	} else {
		globalLogger.SetLevel(logrus.InfoLevel)
	}
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = newLogger(io.Discard)
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	globalLogger.Infof(format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	globalLogger.Debugf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	globalLogger.Errorf(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	globalLogger.Warnf(format, v...)
}

// WithFields returns an entry carrying structured fields, for call sites
// that log the same keys repeatedly (keyword name, step index).
func WithFields(fields map[string]interface{}) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	return globalLogger.WithFields(logrus.Fields(fields))
}

// GetWriter returns the underlying writer.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return logFile
	}
	return globalLogger.Out
}
