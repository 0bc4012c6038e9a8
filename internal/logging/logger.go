package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type LogLevel uint8

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

// ParseLevel maps a config/CLI level name to a LogLevel. Unknown names fall
// back to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "critical":
		return LevelCritical
	default:
		return LevelInfo
	}
}

type Logger struct {
	level   LogLevel
	outputs []io.Writer
	file    *os.File
	logChan chan string
	wg      sync.WaitGroup
	once    sync.Once

	// mu guards logChan against sends after Close
	mu     sync.RWMutex
	closed bool
}

// NewLogger writes to path (when non-empty) and mirrors every line to stderr.
func NewLogger(level LogLevel, path string) (*Logger, error) {
	l := &Logger{
		level:   level,
		outputs: []io.Writer{os.Stderr},
		logChan: make(chan string, 10000), // Large buffer for bursts
	}

	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		l.file = file
		l.outputs = append(l.outputs, file)
	}

	l.start()
	return l, nil
}

// NewWriterLogger logs to an arbitrary writer; used by tests.
func NewWriterLogger(level LogLevel, w io.Writer) *Logger {
	l := &Logger{
		level:   level,
		outputs: []io.Writer{w},
		logChan: make(chan string, 10000),
	}
	l.start()
	return l
}

func (l *Logger) start() {
	l.wg.Add(1)
	go l.worker()
}

func (l *Logger) worker() {
	defer l.wg.Done()
	for line := range l.logChan {
		for _, out := range l.outputs {
			io.WriteString(out, line)
		}
	}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	levelStr := l.levelString(level)
	message := fmt.Sprintf(format, args...)

	line := fmt.Sprintf("[%s] [%s] %s\n", timestamp, levelStr, message)

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.logChan <- line:
	default:
		// Drop log if buffer full; event handlers must never block on logging
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *Logger) Critical(format string, args ...interface{}) {
	l.log(LevelCritical, format, args...)
}

func (l *Logger) levelString(level LogLevel) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Close flushes pending lines. It is safe to call more than once.
func (l *Logger) Close() error {
	var err error
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.logChan)
		l.mu.Unlock()
		l.wg.Wait()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

var GlobalLogger *Logger

func InitGlobalLogger(level LogLevel, path string) error {
	logger, err := NewLogger(level, path)
	if err != nil {
		return err
	}
	GlobalLogger = logger
	return nil
}

// CloseGlobalLogger flushes the global logger during shutdown.
func CloseGlobalLogger() error {
	if GlobalLogger == nil {
		return nil
	}
	return GlobalLogger.Close()
}

func Debug(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Debug(format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Info(format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Warn(format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Error(format, args...)
	}
}

func Critical(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Critical(format, args...)
	}
}
