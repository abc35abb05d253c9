package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines a minimal, printf-style logging contract. Packages depend on
// this interface rather than a concrete sink so tests can inject a no-op.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}

var (
	rootInstance *fileLogger
	rootOnce     sync.Once
)

// fileLogger writes structured lines to agentone-debug.log in the user's home
// directory. All component loggers share the underlying file handle.
type fileLogger struct {
	file      *os.File
	logger    *log.Logger
	level     Level
	mu        *sync.Mutex
	component string
}

func root() *fileLogger {
	rootOnce.Do(func() {
		rootInstance = newFileLogger(DEBUG)
	})
	return rootInstance
}

func newFileLogger(level Level) *fileLogger {
	l := &fileLogger{level: level, mu: &sync.Mutex{}}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("logging: failed to resolve home directory: %v", err)
		return l
	}

	logPath := filepath.Join(home, "agentone-debug.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("logging: failed to open %s: %v", logPath, err)
		return l
	}

	l.file = file
	l.logger = log.New(file, "", 0)
	return l
}

// NewComponentLogger returns the shared application logger scoped to a
// component name that is prefixed on every line.
func NewComponentLogger(component string) Logger {
	shared := root()
	return &fileLogger{
		file:      shared.file,
		logger:    shared.logger,
		level:     shared.level,
		mu:        shared.mu,
		component: component,
	}
}

// SetLevel adjusts the minimum level of the shared logger. Component loggers
// created afterwards inherit the new level.
func SetLevel(level Level) {
	r := root()
	r.mu.Lock()
	r.level = level
	r.mu.Unlock()
}

func (l *fileLogger) log(level Level, format string, args ...any) {
	if level < l.level || l.logger == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	} else {
		file = "???"
		line = 0
	}

	component := l.component
	if component == "" {
		component = "main"
	}

	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("%s [%s] [%s] %s:%d %s",
		time.Now().Format("2006-01-02 15:04:05.000"),
		level, component, file, line, msg)
}

func (l *fileLogger) Debug(format string, args ...any) { l.log(DEBUG, format, args...) }
func (l *fileLogger) Info(format string, args ...any)  { l.log(INFO, format, args...) }
func (l *fileLogger) Warn(format string, args ...any)  { l.log(WARN, format, args...) }
func (l *fileLogger) Error(format string, args ...any) { l.log(ERROR, format, args...) }
