package deckfill

import (
	"log/slog"
	"time"
)

// options holds configuration shared by the pipeline components.
type options struct {
	logger       *slog.Logger
	maxRetries   int
	retryPause   time.Duration
	settleDelay  time.Duration
	settleLimit  time.Duration
	scratchDir   string
	sweeper      ProcessSweeper
	sleep        func(time.Duration)
	now          func() time.Time
	preRunSweep  bool
	postRunSweep bool
}

// Option configures the pipeline.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		logger:       slog.Default(),
		maxRetries:   3,
		retryPause:   2 * time.Second,
		settleDelay:  500 * time.Millisecond,
		settleLimit:  10 * time.Second,
		scratchDir:   "",
		sweeper:      NewHostProcessSweeper(),
		sleep:        time.Sleep,
		now:          time.Now,
		preRunSweep:  true,
		postRunSweep: true,
	}
}

// WithLogger sets the logger used for progress and best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxRetries sets the attempt count for operations prone to transient
// automation errors (tag reads, loop-table access).
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}

// WithRetryPause sets the pause after a forced host-process sweep between
// retry attempts.
func WithRetryPause(d time.Duration) Option {
	return func(o *options) { o.retryPause = d }
}

// WithSettleDelay sets the fallback wait after a recalculation when the
// spreadsheet host exposes no calculation-complete signal.
func WithSettleDelay(d time.Duration) Option {
	return func(o *options) { o.settleDelay = d }
}

// WithSettleLimit bounds how long recalculation-complete polling may run
// before giving up and proceeding.
func WithSettleLimit(d time.Duration) Option {
	return func(o *options) { o.settleLimit = d }
}

// WithScratchDir sets the directory for exported chart images. Empty means
// a per-run directory under the OS temp dir.
func WithScratchDir(dir string) Option {
	return func(o *options) { o.scratchDir = dir }
}

// WithProcessSweeper replaces the stray-host-process sweeper.
func WithProcessSweeper(s ProcessSweeper) Option {
	return func(o *options) {
		if s != nil {
			o.sweeper = s
		}
	}
}

// WithSleep replaces the sleep function. Tests inject a no-op to skip the
// settle delays and retry pauses.
func WithSleep(fn func(time.Duration)) Option {
	return func(o *options) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

// WithClock replaces the time source used for elapsed-time measurement.
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		if fn != nil {
			o.now = fn
		}
	}
}

// WithPreRunSweep enables or disables the defensive pre-run kill of stray
// automation host processes.
func WithPreRunSweep(enabled bool) Option {
	return func(o *options) { o.preRunSweep = enabled }
}

// WithPostRunSweep enables or disables the post-run cleanup sweep.
func WithPostRunSweep(enabled bool) Option {
	return func(o *options) { o.postRunSweep = enabled }
}
