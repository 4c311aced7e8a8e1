package timers

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/id"
	"go.uber.org/zap"
)

// MinInterval is the shortest repeat period accepted by Every
const MinInterval = 10 * time.Millisecond

// Kind distinguishes one-shot timers from intervals
type Kind string

const (
	KindTimeout  Kind = "timeout"
	KindInterval Kind = "interval"
)

type entry struct {
	kind      Kind
	timer     *time.Timer
	stop      chan struct{}
	cancelled atomic.Bool
}

func (e *entry) cancel() {
	if !e.cancelled.CompareAndSwap(false, true) {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	if e.stop != nil {
		close(e.stop)
	}
}

// Registry owns every pending timer of one session
type Registry struct {
	mu      sync.Mutex
	entries map[id.TimerID]*entry
	closed  bool
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithMetrics reports the active timer count
func WithMetrics(m *monitoring.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[id.TimerID]*entry),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// After runs fn once after delay. Negative delays run immediately.
// Returns the empty id if the registry is closed.
func (r *Registry) After(delay time.Duration, fn func()) id.TimerID {
	if delay < 0 {
		delay = 0
	}

	tid := id.NewTimerID()
	e := &entry{kind: KindTimeout}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ""
	}
	// Hold the lock across AfterFunc so the callback's remove sees the entry.
	e.timer = time.AfterFunc(delay, func() {
		if e.cancelled.Load() {
			return
		}
		r.remove(tid, e)
		fn()
	})
	r.entries[tid] = e
	r.mu.Unlock()

	r.metrics.AddTimers(1)
	r.logger.Debug("timer scheduled", zap.String("timer_id", tid.String()), zap.Duration("delay", delay))
	return tid
}

// Every runs fn each period until cancelled. Periods below MinInterval are raised to it.
func (r *Registry) Every(period time.Duration, fn func()) id.TimerID {
	if period < MinInterval {
		period = MinInterval
	}

	tid := id.NewTimerID()
	e := &entry{kind: KindInterval, stop: make(chan struct{})}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ""
	}
	r.entries[tid] = e
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-e.stop:
				return
			case <-ticker.C:
				if e.cancelled.Load() {
					return
				}
				fn()
			}
		}
	}()

	r.metrics.AddTimers(1)
	r.logger.Debug("interval scheduled", zap.String("timer_id", tid.String()), zap.Duration("period", period))
	return tid
}

// Cancel stops one timer of either kind. Unknown ids return false.
func (r *Registry) Cancel(tid id.TimerID) bool {
	r.mu.Lock()
	e, ok := r.entries[tid]
	if ok {
		delete(r.entries, tid)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	e.cancel()
	r.metrics.AddTimers(-1)
	return true
}

// CancelAll stops every pending timer and returns how many there were
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	pending := r.entries
	r.entries = make(map[id.TimerID]*entry)
	r.mu.Unlock()

	for _, e := range pending {
		e.cancel()
	}
	if n := len(pending); n > 0 {
		r.metrics.AddTimers(-float64(n))
		r.logger.Debug("timers cancelled", zap.Int("count", n))
	}
	return len(pending)
}

// Close cancels everything and rejects further scheduling
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.CancelAll()
}

// Kind returns the kind of a pending timer
func (r *Registry) Kind(tid id.TimerID) (Kind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[tid]
	if !ok {
		return "", false
	}
	return e.kind, true
}

// Len returns the number of pending timers
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) remove(tid id.TimerID, e *entry) {
	r.mu.Lock()
	current, ok := r.entries[tid]
	if ok && current == e {
		delete(r.entries, tid)
	}
	r.mu.Unlock()

	if ok && current == e {
		r.metrics.AddTimers(-1)
	}
}
