package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how the logger writes
type Options struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Logger wraps logrus with additional functionality
type Logger struct {
	*logrus.Logger
	fields logrus.Fields
	file   *lumberjack.Logger
}

// NewLogger creates a new logger instance
func NewLogger(level, logFile string) *Logger {
	return New(Options{Level: level, File: logFile, MaxSize: 100, MaxBackups: 3, MaxAge: 28, Compress: true})
}

// New creates a logger from explicit options
func New(opts Options) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	l := &Logger{
		Logger: log,
		fields: make(logrus.Fields),
	}
	l.SetFormatter(opts.Format)

	if opts.File != "" {
		logDir := filepath.Dir(opts.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("Failed to create log directory: %v\n", err)
		} else {
			l.file = &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    opts.MaxSize, // MB
				MaxBackups: opts.MaxBackups,
				MaxAge:     opts.MaxAge, // days
				Compress:   opts.Compress,
			}

			log.SetOutput(io.MultiWriter(os.Stdout, l.file))
		}
	}

	return l
}

// NewNop returns a logger that discards everything, for tests
func NewNop() *Logger {
	l := New(Options{Level: "panic"})
	l.SetOutput(io.Discard)
	return l
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	newFields := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{
		Logger: l.Logger,
		fields: newFields,
		file:   l.file,
	}
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// entry resolves args either as printf arguments (when msg has verbs)
// or as alternating key/value pairs.
func (l *Logger) entry(msg string, args []interface{}) (*logrus.Entry, string) {
	entry := l.Logger.WithFields(l.fields)
	if len(args) == 0 {
		return entry, msg
	}

	if strings.Contains(msg, "%") || len(args)%2 != 0 {
		return entry, fmt.Sprintf(msg, args...)
	}

	fields := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields[key] = args[i+1]
	}
	return entry.WithFields(fields), msg
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	entry, text := l.entry(msg, args)
	entry.Debug(text)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	entry, text := l.entry(msg, args)
	entry.Info(text)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, args ...interface{}) {
	entry, text := l.entry(msg, args)
	entry.Warning(text)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	entry, text := l.entry(msg, args)
	entry.Error(text)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, args ...interface{}) {
	entry, text := l.entry(msg, args)
	entry.Fatal(text)
}

// SecurityLogger logs security-related events
func (l *Logger) SecurityLogger(event, userID, details string) {
	l.WithFields(map[string]interface{}{
		"event_type": "security",
		"event":      event,
		"user_id":    userID,
		"details":    details,
		"timestamp":  time.Now().Unix(),
	}).Warning("Security event logged")
}

// AuditLogger logs audit events
func (l *Logger) AuditLogger(action, userID, resource, details string) {
	l.WithFields(map[string]interface{}{
		"event_type": "audit",
		"action":     action,
		"user_id":    userID,
		"resource":   resource,
		"details":    details,
		"timestamp":  time.Now().Unix(),
	}).Info("Audit event logged")
}

// BookingLogger logs appointment lifecycle events
func (l *Logger) BookingLogger(event string, appointmentID, clientID, workerID int64, details string) {
	l.WithFields(map[string]interface{}{
		"event_type":     "booking",
		"event":          event,
		"appointment_id": appointmentID,
		"client_id":      clientID,
		"worker_id":      workerID,
		"details":        details,
		"timestamp":      time.Now().Unix(),
	}).Info("Booking event logged")
}

// PerformanceLogger logs performance metrics
func (l *Logger) PerformanceLogger(operation string, duration time.Duration, success bool) {
	l.WithFields(map[string]interface{}{
		"event_type": "performance",
		"operation":  operation,
		"duration":   duration.Milliseconds(),
		"success":    success,
		"timestamp":  time.Now().Unix(),
	}).Info("Performance event logged")
}

// StructuredError logs a structured error with context
func (l *Logger) StructuredError(err error, context map[string]interface{}) {
	fields := map[string]interface{}{
		"error":     err.Error(),
		"timestamp": time.Now().Unix(),
	}

	for k, v := range context {
		fields[k] = v
	}

	l.WithFields(fields).Error("Structured error logged")
}

// SetLogLevel dynamically sets the log level
func (l *Logger) SetLogLevel(level string) error {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.Logger.SetLevel(logLevel)
	return nil
}

// SetFormatter sets the log formatter
func (l *Logger) SetFormatter(format string) {
	switch format {
	case "json":
		l.Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		l.Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}

// Close closes the rotating log file, if one was opened
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
