// Package tasks runs the mock server's periodic jobs: fixture resets and
// simulated server heartbeats.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nspass/nspass-mockd/pkg/logging"
)

// Entry describes one scheduled job.
type Entry struct {
	Name string    `json:"name"`
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
	Prev time.Time `json:"prev,omitempty"`
}

// Scheduler wraps a cron runner with named jobs.
type Scheduler struct {
	mu    sync.Mutex
	cron  *cron.Cron
	names map[cron.EntryID]string
	specs map[cron.EntryID]string
	log   *slog.Logger
	runs  func(name string)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRunHook is called after every job run.
func WithRunHook(fn func(name string)) Option {
	return func(s *Scheduler) { s.runs = fn }
}

// New builds a stopped scheduler. Jobs that panic are logged and skipped.
func New(log *slog.Logger, opts ...Option) *Scheduler {
	log = logging.Component(log, "tasks")
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron:  cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		names: make(map[cron.EntryID]string),
		specs: make(map[cron.EntryID]string),
		log:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add schedules fn under a standard cron spec ("0 4 * * *", "@every 30s").
// An empty spec is a no-op.
func (s *Scheduler) Add(name, spec string, fn func()) error {
	if spec == "" {
		return nil
	}
	id, err := s.cron.AddFunc(spec, func() {
		fn()
		if s.runs != nil {
			s.runs(name)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %s %q: %w", name, spec, err)
	}
	s.mu.Lock()
	s.names[id] = name
	s.specs[id] = spec
	s.mu.Unlock()
	s.log.Debug("job scheduled", "job", name, "spec", spec)
	return nil
}

// Entries lists scheduled jobs in run order.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, e := range s.cron.Entries() {
		out = append(out, Entry{Name: s.names[e.ID], Spec: s.specs[e.ID], Next: e.Next, Prev: e.Prev})
	}
	return out
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs or ctx, whichever
// comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
