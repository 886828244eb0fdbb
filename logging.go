package particlesim

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is the application logger. It is a superset of sim.Logger, so the
// same value is handed to the simulation packages.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	// Named returns a child logger whose lines carry name after the
	// parent prefix. Children share the parent's debug switch.
	Named(name string) Logger
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// debugSwitch is shared by a logger and all of its children.
type debugSwitch struct {
	mu      sync.Mutex
	enabled bool
}

func (d *debugSwitch) get() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

func (d *debugSwitch) set(enabled bool) {
	d.mu.Lock()
	d.enabled = enabled
	d.mu.Unlock()
}

type DefaultLogger struct {
	debug  *debugSwitch
	prefix string
	out    *log.Logger
	err    *log.Logger
}

// NewDefaultLogger logs info and debug lines to stdout, warnings and errors
// to stderr.
func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLoggerTo(os.Stdout, os.Stderr, prefix, debug, log.LstdFlags|log.Lmicroseconds)
}

// NewLoggerTo is NewDefaultLogger with explicit writers and log flags.
func NewLoggerTo(out, errOut io.Writer, prefix string, debug bool, flags int) *DefaultLogger {
	return &DefaultLogger{
		debug:  &debugSwitch{enabled: debug},
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool { return l.debug.get() }

func (l *DefaultLogger) SetDebug(enabled bool) { l.debug.set(enabled) }

func (l *DefaultLogger) Named(name string) Logger {
	child := *l
	if l.prefix != "" {
		child.prefix = l.prefix + "/" + name
	} else {
		child.prefix = name
	}
	return &child
}

func (l *DefaultLogger) line(level string, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print(l.line("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.line("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.line("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.line("ERROR", format, args...))
}

// Nop logger

type nopLogger struct{}

func NewNopLogger() Logger                          { return nopLogger{} }
func (nopLogger) DebugEnabled() bool                { return false }
func (nopLogger) SetDebug(enabled bool)             {}
func (n nopLogger) Named(name string) Logger        { return n }
func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}

// loggerOrNop never returns nil.
func loggerOrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
