package threadlet

import "time"

// loopOptions holds configuration resolved from LoopOption values.
type loopOptions struct {
	maxEvents       int
	logger          *Logger
	errorRateLimits map[time.Duration]int
}

// LoopOption configures a Loop at construction (§6 loop lifecycle: create).
type LoopOption interface {
	applyLoop(*loopOptions)
}

type loopOptionFunc func(*loopOptions)

func (f loopOptionFunc) applyLoop(o *loopOptions) { f(o) }

// WithMaxEvents sets the size of the poller's readiness event buffer
// (§4.1 create). Defaults to DefaultMaxEvents.
func WithMaxEvents(n int) LoopOption {
	return loopOptionFunc(func(o *loopOptions) {
		o.maxEvents = n
	})
}

// WithLogger attaches a Logger the loop will emit severity-tagged events
// to. Defaults to a Logger writing JSON to os.Stderr.
func WithLogger(l *Logger) LoopOption {
	return loopOptionFunc(func(o *loopOptions) {
		o.logger = l
	})
}

// WithErrorLogRateLimit configures the sliding-window rate limits applied
// to the loop's throttled error logging (poller wake, wait and remove
// failures) (§AMBIENT STACK).
func WithErrorLogRateLimit(rates map[time.Duration]int) LoopOption {
	return loopOptionFunc(func(o *loopOptions) {
		o.errorRateLimits = rates
	})
}

func resolveLoopOptions(opts []LoopOption) *loopOptions {
	cfg := &loopOptions{maxEvents: DefaultMaxEvents}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyLoop(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = NewLogger(nil)
	}
	if cfg.errorRateLimits != nil {
		cfg.logger = cfg.logger.WithErrorRateLimit(cfg.errorRateLimits)
	}
	return cfg
}
