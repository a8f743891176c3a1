package lib

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LogDirectory = "logs"
	LogFileName  = "log"
)

/*
	This file implements the leveled logger shared by every module of the engine.
	Lines are colored by level, and when no writer is configured the output is teed to stdout and an
	auto-rotating file under the data directory.
*/

func init() {
	color.NoColor = false
}

// LoggerI defines the interface for various logging levels and formatted output
type LoggerI interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
	Print(msg string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Printf(format string, args ...interface{})
	// WithPrefix() returns a logger that tags every line with a component name
	WithPrefix(prefix string) LoggerI
}

const (
	DebugLevel int32 = -4
	InfoLevel  int32 = 0
	WarnLevel  int32 = 4
	ErrorLevel int32 = 8
	FatalLevel int32 = 12
)

var _ LoggerI = &Logger{}

// levelStyle is the label and color printed for each level
type levelStyle struct {
	label string
	paint func(format string, a ...interface{}) string
}

var levelStyles = map[int32]levelStyle{
	DebugLevel: {"DEBUG", color.BlueString},
	InfoLevel:  {"INFO", color.GreenString},
	WarnLevel:  {"WARN", color.YellowString},
	ErrorLevel: {"ERROR", color.RedString},
	FatalLevel: {"FATAL", color.RedString},
}

// LoggerConfig holds configuration settings for the logger, including logging level and output writer
type LoggerConfig struct {
	Level int32 `json:"level"`
	Out   io.Writer
}

// Logger is the concrete implementation of LoggerI
type Logger struct {
	config LoggerConfig
	prefix string
	mu     *sync.Mutex // shared between a logger and its prefixed children
}

func (l *Logger) Debug(msg string) { l.log(DebugLevel, msg) }
func (l *Logger) Info(msg string)  { l.log(InfoLevel, msg) }
func (l *Logger) Warn(msg string)  { l.log(WarnLevel, msg) }
func (l *Logger) Error(msg string) { l.log(ErrorLevel, msg) }

// Fatal() logs an error message and terminates the program
func (l *Logger) Fatal(msg string) {
	l.log(FatalLevel, msg)
	os.Exit(1)
}

// Print() logs a message without any level or color
func (l *Logger) Print(msg string) { l.write(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(DebugLevel, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(InfoLevel, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(WarnLevel, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(ErrorLevel, format, args...) }

// Fatalf() logs a formatted error message and terminates the program
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.logf(FatalLevel, format, args...)
	os.Exit(1)
}

// Printf() logs a formatted message without any level or color
func (l *Logger) Printf(format string, args ...interface{}) { l.write(fmt.Sprintf(format, args...)) }

// WithPrefix() returns a child logger sharing the writer and level
func (l *Logger) WithPrefix(prefix string) LoggerI {
	if l.prefix != "" {
		prefix = l.prefix + "/" + prefix
	}
	return &Logger{config: l.config, prefix: prefix, mu: l.mu}
}

// logf() formats only when the level is enabled
func (l *Logger) logf(level int32, format string, args ...interface{}) {
	if l.config.Level > level {
		return
	}
	l.log(level, fmt.Sprintf(format, args...))
}

// log() writes a leveled and colored line
func (l *Logger) log(level int32, msg string) {
	if l.config.Level > level {
		return
	}
	style := levelStyles[level]
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s", l.prefix, msg)
	}
	l.write(colorLines(style.paint, style.label+": "+msg))
}

// write() outputs the log message with a timestamp to the configured writer
func (l *Logger) write(msg string) {
	timestamp := color.HiBlackString(time.Now().Format(time.StampMilli))
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintf(l.config.Out, "%s %s\n", timestamp, msg); err != nil {
		fmt.Println(ErrWriteFile(err))
	}
}

// NewLogger() creates a new Logger instance with the specified configuration and optional data directory path
func NewLogger(config LoggerConfig, dataDirPath ...string) LoggerI {
	if config.Out == nil {
		dir := DefaultDataDirPath()
		if len(dataDirPath) != 0 && dataDirPath[0] != "" {
			dir = dataDirPath[0]
		}
		logPath := filepath.Join(dir, LogDirectory, LogFileName)
		if _, err := os.Stat(logPath); errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(filepath.Join(dir, LogDirectory), os.ModePerm); err != nil {
				panic(err)
			}
		}
		logFile := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // megabytes
			MaxBackups: 100,
			MaxAge:     14, // days
			Compress:   true,
		}
		config.Out = io.MultiWriter(os.Stdout, logFile)
	}
	return &Logger{config: config, mu: &sync.Mutex{}}
}

// NewDefaultLogger() creates a Logger with default settings, logging at the Debug level to stdout
func NewDefaultLogger() LoggerI {
	return NewLogger(LoggerConfig{Level: DebugLevel, Out: os.Stdout})
}

// NewNullLogger() creates a Logger that discards all log output
func NewNullLogger() LoggerI {
	return NewLogger(LoggerConfig{Level: DebugLevel, Out: io.Discard})
}

// colorLines() applies the color per line so multi-line errors stay colored
func colorLines(paint func(format string, a ...interface{}) string, msg string) string {
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		lines[i] = paint("%s", line)
	}
	return strings.Join(lines, "\n")
}
