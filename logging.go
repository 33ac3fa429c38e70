// Structured logging for the runtime. The core merely emits severity-tagged
// text events (§1); logging never participates in control flow.
package threadlet

import (
	"io"
	"os"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the package's observability surface. It wraps
// github.com/joeycumines/logiface, backed by default with
// github.com/joeycumines/stumpy's JSON encoder, the pairing the reference
// corpus standardizes on.
//
// A nil *Logger is valid and discards everything, so components can hold an
// unconditional *Logger field without a nil check at every call site.
type Logger struct {
	base    *logiface.Logger[*stumpy.Event]
	limiter *catrate.Limiter
}

// Field is one structured key/value pair attached to a log event.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// NewLogger constructs a Logger writing newline-delimited JSON to w (os
// Stderr if nil), matching the teacher's DefaultLogger default destination.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		base: stumpy.L.New(
			stumpy.L.WithStumpy(),
			stumpy.L.WithWriter(w),
		),
	}
}

// WithErrorRateLimit attaches a multi-window rate limiter used to throttle
// repeated error-class log lines per category, so a misbehaving peer cannot
// flood the log sink. It never affects Code classification or control flow,
// only whether a given ErrorThrottled call emits.
func (l *Logger) WithErrorRateLimit(rates map[time.Duration]int) *Logger {
	if l == nil {
		return nil
	}
	l.limiter = catrate.NewLimiter(rates)
	return l
}

func (l *Logger) apply(b *logiface.Builder[*stumpy.Event], fields []Field) *logiface.Builder[*stumpy.Event] {
	for _, f := range fields {
		b = b.Any(f.Key, f.Value)
	}
	return b
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	if l == nil || l.base == nil {
		return
	}
	l.apply(l.base.Debug(), fields).Log(msg)
}

// Info logs at informational level.
func (l *Logger) Info(msg string, fields ...Field) {
	if l == nil || l.base == nil {
		return
	}
	l.apply(l.base.Info(), fields).Log(msg)
}

// Warn logs at warning level.
func (l *Logger) Warn(msg string, fields ...Field) {
	if l == nil || l.base == nil {
		return
	}
	l.apply(l.base.Warning(), fields).Log(msg)
}

// Error logs at error level, attaching err.
func (l *Logger) Error(msg string, err error, fields ...Field) {
	if l == nil || l.base == nil {
		return
	}
	b := l.base.Err()
	if err != nil {
		b = b.Err(err)
	}
	l.apply(b, fields).Log(msg)
}

// ErrorThrottled behaves like Error, except repeated calls for the same
// category within the configured rate-limit windows are dropped. The loop
// uses it for poller wake, wait and remove failures; it never affects
// application-visible control flow.
func (l *Logger) ErrorThrottled(category string, msg string, err error, fields ...Field) {
	if l == nil || l.base == nil {
		return
	}
	if l.limiter != nil {
		if _, ok := l.limiter.Allow(category); !ok {
			return
		}
	}
	l.Error(msg, err, fields...)
}

// loopFields builds the common {loop_id, task_id, fd} field set attached to
// most runtime-internal log lines.
func loopFields(loopID uint64, taskID uint64, fd int) []Field {
	fields := make([]Field, 0, 3)
	fields = append(fields, F("loop_id", loopID))
	if taskID != 0 {
		fields = append(fields, F("task_id", taskID))
	}
	if fd >= 0 {
		fields = append(fields, F("fd", fd))
	}
	return fields
}
