// Package debuglog is the application logger. Every accepted record is
// written to the standard logger (the rotating log file) and forwarded as a
// Record on an optional channel, which feeds the on-screen log view.
package debuglog

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelVerbose
	LevelTrace
)

const envKey = "OVERTLS_MANAGER_DEBUG"

// ErrAlreadyInstalled is returned by Install when a logger is already in place.
var ErrAlreadyInstalled = errors.New("debuglog: logger already installed")

// ParseLevel maps a level name to a Level. ok is false for unknown names.
func ParseLevel(raw string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return LevelTrace, true
	case "verbose", "debug":
		return LevelVerbose, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "off":
		return LevelOff, true
	default:
		return LevelVerbose, false
	}
}

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelVerbose:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "OFF"
	}
}

// Record is one accepted log message.
type Record struct {
	Level   Level
	Origin  string
	Message string
	Time    time.Time
}

// Logger filters records per origin module and forwards them.
type Logger struct {
	mu            sync.RWMutex
	sink          chan<- Record
	moduleFilters map[string]Level
	defaultLevel  Level
	dropped       atomic.Uint64
}

// NewLogger creates a logger forwarding to sink (may be nil).
// OVERTLS_MANAGER_DEBUG, when set to a known level, overrides defaultLevel.
func NewLogger(sink chan<- Record, defaultLevel Level) *Logger {
	if lvl, ok := EnvLevel(); ok {
		defaultLevel = lvl
	}
	return &Logger{
		sink:          sink,
		moduleFilters: make(map[string]Level),
		defaultLevel:  defaultLevel,
	}
}

// EnvLevel returns the level forced through OVERTLS_MANAGER_DEBUG, if any.
func EnvLevel() (Level, bool) {
	return ParseLevel(os.Getenv(envKey))
}

// SetModuleFilter adds or updates the maximum level for a module.
func (l *Logger) SetModuleFilter(module string, level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.moduleFilters[module] = level
}

// RemoveModuleFilter removes a module filter.
func (l *Logger) RemoveModuleFilter(module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.moduleFilters, module)
}

// ReplaceModuleFilters swaps the whole filter table.
func (l *Logger) ReplaceModuleFilters(filters map[string]Level) {
	next := make(map[string]Level, len(filters))
	for k, v := range filters {
		next[k] = v
	}
	l.mu.Lock()
	l.moduleFilters = next
	l.mu.Unlock()
}

// SetDefaultLevel sets the level for modules without a filter.
func (l *Logger) SetDefaultLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defaultLevel = level
}

// Enabled reports whether a record of level from origin would be accepted.
func (l *Logger) Enabled(level Level, origin string) bool {
	if level == LevelOff {
		return false
	}
	root := rootModule(origin)
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit, ok := l.moduleFilters[root]; ok {
		return level <= limit
	}
	return level <= l.defaultLevel
}

// Log writes and forwards the record if accepted.
func (l *Logger) Log(level Level, origin, message string) {
	if !l.Enabled(level, origin) {
		return
	}
	log.Printf("[%-5s %s] %s", level, origin, message)

	l.mu.RLock()
	sink := l.sink
	l.mu.RUnlock()
	if sink == nil {
		return
	}
	select {
	case sink <- Record{Level: level, Origin: origin, Message: message, Time: time.Now()}:
	default:
		l.dropped.Add(1)
	}
}

// Dropped returns the number of records lost because the sink was full.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// rootModule returns the first segment of an origin: "overtls/client" -> "overtls".
func rootModule(origin string) string {
	if i := strings.IndexAny(origin, "/."); i >= 0 {
		return origin[:i]
	}
	return origin
}

var (
	installed atomic.Pointer[Logger]
	fallback  = NewLogger(nil, LevelVerbose)
)

// Install makes l the process-wide logger. Only the first call succeeds.
func Install(l *Logger) error {
	if !installed.CompareAndSwap(nil, l) {
		return ErrAlreadyInstalled
	}
	return nil
}

// Current returns the installed logger, or a file-only fallback.
func Current() *Logger {
	if l := installed.Load(); l != nil {
		return l
	}
	return fallback
}

// Log logs a formatted message for an explicit origin.
func Log(origin string, level Level, format string, args ...interface{}) {
	lg := Current()
	if !lg.Enabled(level, origin) {
		return
	}
	lg.Log(level, origin, fmt.Sprintf(format, args...))
}

func ErrorLog(format string, args ...interface{}) { logFromCaller(LevelError, format, args...) }
func WarnLog(format string, args ...interface{})  { logFromCaller(LevelWarn, format, args...) }
func InfoLog(format string, args ...interface{})  { logFromCaller(LevelInfo, format, args...) }
func DebugLog(format string, args ...interface{}) { logFromCaller(LevelVerbose, format, args...) }
func TraceLog(format string, args ...interface{}) { logFromCaller(LevelTrace, format, args...) }

func logFromCaller(level Level, format string, args ...interface{}) {
	origin := callerOrigin(3)
	Log(origin, level, format, args...)
}

// callerOrigin derives "overtls" from "overtls-manager/internal/overtls.(*Client).Run".
func callerOrigin(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "main"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "main"
	}
	return originFromFuncName(fn.Name())
}

func originFromFuncName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}

// LogTextFragment logs a text, showing only the head and the tail of long texts.
func LogTextFragment(level Level, description, text string, maxChars int) {
	origin := callerOrigin(2)
	if !Current().Enabled(level, origin) {
		return
	}
	textLen := len(text)
	if textLen <= maxChars*2 {
		Log(origin, level, "%s (len=%d): %s", description, textLen, text)
		return
	}
	Log(origin, level, "%s (len=%d): first %d chars: %s", description, textLen, maxChars, text[:maxChars])
	Log(origin, level, "%s (len=%d): last %d chars: %s", description, textLen, maxChars, text[textLen-maxChars:])
}
