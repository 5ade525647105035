package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logFile *os.File
	sugar   = zap.NewNop().Sugar()
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	enabled = true
)

const (
	maxLogSize = 5 * 1024 * 1024 // 5MB
	logName    = "canopy.log"
)

// Init opens canopy.log in dir and routes all log calls to it. The
// terminal belongs to the UI, so nothing is ever written to stderr.
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create log directory: %w", err)
	}

	logPath := filepath.Join(dir, logName)

	// Rotate by renaming to .old
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		oldPath := logPath + ".old"
		os.Remove(oldPath)
		os.Rename(logPath, oldPath)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(file), level)

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		sugar.Sync()
		logFile.Close()
	}
	logFile = file
	sugar = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()
	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		sugar.Sync()
		logFile.Close()
		logFile = nil
	}
	sugar = zap.NewNop().Sugar()
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return
	}
	level.SetLevel(l)
}

// Disable disables logging (useful for tests)
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
}

// Enable enables logging
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
}

func Debug(format string, args ...any) { log(zapcore.DebugLevel, format, args...) }

func Info(format string, args ...any) { log(zapcore.InfoLevel, format, args...) }

// Warn logs a warning message
func Warn(format string, args ...any) { log(zapcore.WarnLevel, format, args...) }

// Error logs an error message
func Error(format string, args ...any) { log(zapcore.ErrorLevel, format, args...) }

func log(lvl zapcore.Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	sugar.Logf(lvl, format, args...)
}
