package deckfill

import (
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessSweeper force-terminates stray automation host processes. Leaked
// hosts hold file locks and consume memory, and are the dominant source of
// flakiness across runs, so the pipeline sweeps before a run, between retry
// attempts, and after a run.
type ProcessSweeper interface {
	// Sweep kills matching processes and returns how many were terminated.
	Sweep() (int, error)
}

// hostExecutables are the automation host process names swept by default.
var hostExecutables = []string{"excel.exe", "powerpnt.exe", "xlwings32.exe"}

type hostProcessSweeper struct {
	names map[string]bool
}

// NewHostProcessSweeper returns a sweeper that kills the known spreadsheet
// and presentation host executables. It may kill a session a human operator
// had open; automated-run reliability is favored over coexistence.
func NewHostProcessSweeper() ProcessSweeper {
	names := make(map[string]bool, len(hostExecutables))
	for _, n := range hostExecutables {
		names[n] = true
	}
	return &hostProcessSweeper{names: names}
}

func (s *hostProcessSweeper) Sweep() (int, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, err
	}
	killed := 0
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if !s.names[strings.ToLower(name)] {
			continue
		}
		if err := p.Kill(); err != nil {
			continue
		}
		killed++
	}
	return killed, nil
}

// NoSweeper is a ProcessSweeper that does nothing. Used in tests and on
// hosts where killing desktop processes is unwanted.
type NoSweeper struct{}

func (NoSweeper) Sweep() (int, error) { return 0, nil }

// withRetry runs fn up to o.maxRetries times. Only errors matching the known
// transient automation signatures are retried; between attempts the stray
// host processes are killed and the retry pause elapses, because the host
// frequently becomes unresponsive after many open/close cycles.
func withRetry(o *options, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		if attempt > 1 {
			if n, serr := o.sweeper.Sweep(); serr == nil && n > 0 {
				o.logger.Warn("killed stray host processes before retry", "op", op, "count", n)
			}
			o.sleep(o.retryPause)
		}
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		o.logger.Warn("transient automation error", "op", op, "attempt", attempt, "error", err)
	}
	return err
}
