package log

import (
	"fmt"
	"log"
	"os"
)

var global *Logger

// Init inits global logger.
func Init(level string, json bool) {
	global = New(LevelFromString(level), json)
}

// Trace prints message in trace mode.
func Trace(msg Message) {
	if global != nil {
		global.printf(LevelTrace, msg)
	}
}

// Debug prints message in debug mode.
func Debug(msg Message) {
	if global != nil {
		global.printf(LevelDebug, msg)
	}
}

// Info prints message in info mode.
func Info(msg Message) {
	if global != nil {
		global.printf(LevelInfo, msg)
	}
}

// Stat prints stat message regardless of the log level.
func Stat(msg Message) {
	if global != nil {
		global.printf(LevelStat, msg)
	}
}

// Error prints message in error mode.
func Error(msg Message) {
	if global != nil {
		global.printf(LevelError, msg)
	}
}

// Close closes global logger.
func Close() {
	if global != nil {
		global.Close()
	}
}

// Logger is a structured logger that writes messages to standard output. A
// single goroutine owns the output stream so that messages from concurrent
// workers are not interleaved.
type Logger struct {
	donech chan struct{}
	queue  chan string
	impl   *log.Logger
	level  LogLevel
	json   bool
}

// New creates a new logger.
func New(level LogLevel, json bool) *Logger {
	logger := &Logger{
		donech: make(chan struct{}),
		queue:  make(chan string, 10000),
		impl:   log.New(os.Stdout, "", 0),
		level:  level,
		json:   json,
	}
	go logger.out()
	return logger
}

// printf prints message according to the given level and message.
func (l *Logger) printf(level LogLevel, message Message) {
	if level < l.level && level != LevelStat {
		return
	}

	if l.json {
		l.queue <- message.JSON()
	} else {
		l.queue <- l.text(level, message)
	}
}

func (l *Logger) text(level LogLevel, message Message) string {
	if level == LevelInfo || level == LevelStat {
		return message.String()
	}
	return fmt.Sprintf("%v %v", level, message.String())
}

// out consumes the message queue and prints messages to standard output.
func (l *Logger) out() {
	defer close(l.donech)

	for msg := range l.queue {
		l.impl.Println(msg)
	}
}

// Close closes the logger and drains the queued messages.
func (l *Logger) Close() {
	close(l.queue)
	<-l.donech
}

// LogLevel is the level of the logger.
type LogLevel int

const (
	// LevelTrace prints every message.
	LevelTrace LogLevel = iota

	// LevelDebug prints debug and higher messages.
	LevelDebug

	// LevelInfo prints informational and higher messages.
	LevelInfo

	// LevelStat prints the stat messages and errors.
	LevelStat

	// LevelError prints only error messages.
	LevelError
)

// String returns the string representation of logLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelStat:
		return "STAT"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LevelFromString returns logLevel for given string. It returns LevelInfo as
// a fallback.
func LevelFromString(s string) LogLevel {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
