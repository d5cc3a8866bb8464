package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Verbosity gates every console message. A message is printed when the
// configured level is at least the message's minimum level.
type Verbosity int

const (
	Silent Verbosity = iota
	Destination
	Normal
	Verbose
)

var verbosityNames = []string{"silent", "destination", "normal", "verbose"}

func (v Verbosity) String() string {
	if v < Silent || v > Verbose {
		return fmt.Sprintf("verbosity(%d)", int(v))
	}
	return verbosityNames[v]
}

// ParseVerbosity accepts a level name or its number.
func ParseVerbosity(s string) (Verbosity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range verbosityNames {
		if s == name {
			return Verbosity(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= int(Silent) && n <= int(Verbose) {
		return Verbosity(n), nil
	}
	return Normal, fmt.Errorf("unknown verbosity %q (want silent, destination, normal or verbose)", s)
}

// Sink is the leveled console logger threaded through the core. It is an
// immutable value: the level is fixed at construction.
type Sink struct {
	level   Verbosity
	console *logrus.Logger
	// file is ungated; it is nil unless a log file was requested.
	file   *logrus.Logger
	closer io.Closer
}

// SinkOptions configures a Sink.
type SinkOptions struct {
	Level Verbosity
	// Output defaults to os.Stdout.
	Output io.Writer
	// LogFile, when set, receives every message regardless of Level.
	LogFile string
}

func newLogger(out io.Writer, timestamps bool) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       !timestamps,
		FullTimestamp:          timestamps,
		DisableColors:          timestamps,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
	return l
}

// NewSink builds a sink writing to opts.Output and optionally to a rotating file.
func NewSink(opts SinkOptions) *Sink {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	s := &Sink{level: opts.Level, console: newLogger(out, false)}
	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0755); err == nil {
			lj := &lumberjack.Logger{
				Filename:   opts.LogFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			}
			s.closer = lj
			s.file = newLogger(lj, true)
		}
	}
	return s
}

// Discard returns a sink that prints nothing.
func Discard() *Sink {
	return NewSink(SinkOptions{Level: Silent, Output: io.Discard})
}

// Level returns the sink's verbosity.
func (s *Sink) Level() Verbosity {
	if s == nil {
		return Silent
	}
	return s.level
}

// Enabled reports whether messages at min would be printed to the console.
func (s *Sink) Enabled(min Verbosity) bool {
	return s != nil && min > Silent && s.level >= min
}

// Logf prints a message when the sink's level is at least min. The log file,
// if any, gets every message.
func (s *Sink) Logf(min Verbosity, format string, args ...any) {
	if s == nil || min <= Silent {
		return
	}
	if s.Enabled(min) {
		emit(s.console, min, format, args...)
	}
	if s.file != nil {
		emit(s.file, min, format, args...)
	}
}

func emit(l *logrus.Logger, min Verbosity, format string, args ...any) {
	entry := l.WithField("at", min.String())
	switch min {
	case Destination:
		entry.Infof(format, args...)
	case Normal:
		entry.Warnf(format, args...)
	default:
		entry.Debugf(format, args...)
	}
}

// Destinationf reports where an output file landed.
func (s *Sink) Destinationf(format string, args ...any) { s.Logf(Destination, format, args...) }

// Normalf reports per-item faults and skips.
func (s *Sink) Normalf(format string, args ...any) { s.Logf(Normal, format, args...) }

// Verbosef reports step-by-step detail.
func (s *Sink) Verbosef(format string, args ...any) { s.Logf(Verbose, format, args...) }

// Close releases the log file, if any.
func (s *Sink) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
