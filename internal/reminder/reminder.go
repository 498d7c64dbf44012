// Package reminder polls the dataset for overdue Active projects and hands
// each one to a Notifier once per process lifetime.
package reminder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dori/airtrack/internal/model"
	"github.com/rs/zerolog"
)

// DefaultInterval is how often the poller wakes up
const DefaultInterval = 60 * time.Second

// Source supplies a read snapshot of the dataset
type Source interface {
	Snapshot() []model.Project
}

// Snoozer reports whether a project's reminders are suppressed. It is
// expected to evict expired entries itself.
type Snoozer interface {
	Suppressed(key string, now time.Time) bool
}

// Notifier receives due projects. Implementations must not block for long
// and must not touch UI state directly.
type Notifier interface {
	Notify(p model.Project)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(p model.Project)

func (f NotifierFunc) Notify(p model.Project) { f(p) }

// Fanout delivers to every notifier in order
type Fanout []Notifier

func (f Fanout) Notify(p model.Project) {
	for _, n := range f {
		if n != nil {
			n.Notify(p)
		}
	}
}

type Options struct {
	Interval time.Duration
	Location *time.Location // due timestamps are wall-clock in this zone
	Now      func() time.Time
	Log      zerolog.Logger
}

type Poller struct {
	source   Source
	snoozes  Snoozer
	notifier Notifier
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger

	enabled atomic.Bool

	mu   sync.Mutex
	seen map[string]struct{}
}

func New(source Source, snoozes Snoozer, notifier Notifier, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	p := &Poller{
		source:   source,
		snoozes:  snoozes,
		notifier: notifier,
		interval: opts.Interval,
		loc:      opts.Location,
		now:      opts.Now,
		log:      opts.Log,
		seen:     make(map[string]struct{}),
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled turns polling on or off without stopping the loop
func (p *Poller) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

func (p *Poller) Enabled() bool {
	return p.enabled.Load()
}

// Run checks immediately and then every interval until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	p.log.Info().Dur("interval", p.interval).Msg("reminder poller started")

	p.Check(p.now())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("reminder poller stopped")
			return
		case <-ticker.C:
			p.Check(p.now())
		}
	}
}

// Check scans one snapshot and notifies every project that became due.
// It returns the projects it notified.
func (p *Poller) Check(now time.Time) []model.Project {
	if !p.Enabled() {
		return nil
	}

	var due []model.Project
	for _, proj := range p.source.Snapshot() {
		if !proj.ReminderEnabled {
			continue
		}
		if p.snoozes != nil && p.snoozes.Suppressed(proj.ID, now) {
			continue
		}
		if proj.Status != model.StatusActive || !proj.HasDueTimestamp() {
			continue
		}

		at, err := proj.DueAt(p.loc)
		if err != nil {
			p.log.Warn().Err(err).Str("project", proj.Name).Msg("skipping project with malformed due timestamp")
			continue
		}
		if now.Before(at) {
			continue
		}
		if !p.markSeen(proj.ID) {
			continue
		}
		due = append(due, proj)
	}

	for _, proj := range due {
		p.log.Info().Str("project", proj.Name).Str("id", proj.ID).Msg("reminder due")
		p.notifier.Notify(proj)
	}
	return due
}

// Seen reports whether id has already been notified
func (p *Poller) Seen(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.seen[id]
	return ok
}

// Forget lets id fire again, e.g. after its due time was edited
func (p *Poller) Forget(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, id)
}

// Reset clears the whole seen-set
func (p *Poller) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = make(map[string]struct{})
}

// markSeen returns false if id was already in the set
func (p *Poller) markSeen(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[id]; ok {
		return false
	}
	p.seen[id] = struct{}{}
	return true
}
