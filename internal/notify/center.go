package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Severity of a toast.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DefaultTTL is how long a toast stays visible unless dismissed.
const DefaultTTL = 3 * time.Second

// Toast is a visible notification.
type Toast struct {
	ID        string    `json:"id"`
	Scope     string    `json:"scope,omitempty"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Sink receives every toast that becomes visible.
type Sink interface {
	Publish(t Toast)
}

type key struct {
	severity Severity
	message  string
}

type entry struct {
	toast Toast
	seq   uint64
	timer *clock.Timer
}

// Center shows toasts and suppresses a toast while an identical
// (severity, message) toast is still visible. Entries remove themselves
// when their lifetime ends or they are dismissed.
type Center struct {
	mu     sync.Mutex
	ttl    time.Duration
	clock  clock.Clock
	scope  string
	sinks  []Sink
	byKey  map[key]*entry
	byID   map[string]key
	seq    uint64
	closed bool
}

// Option configures a Center.
type Option func(*Center)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(n *Center) { n.clock = c }
}

// WithSink adds a sink.
func WithSink(s Sink) Option {
	return func(n *Center) { n.sinks = append(n.sinks, s) }
}

// WithScope labels every toast, typically with the operator id.
func WithScope(scope string) Option {
	return func(n *Center) { n.scope = scope }
}

// NewCenter creates a notification center. A non-positive ttl uses DefaultTTL.
func NewCenter(ttl time.Duration, opts ...Option) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Center{
		ttl:   ttl,
		clock: clock.New(),
		byKey: make(map[key]*entry),
		byID:  make(map[string]key),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify shows a toast unless the same one is already visible, in which case
// the visible toast is returned unchanged.
func (c *Center) Notify(severity Severity, message string) Toast {
	k := key{severity: severity, message: message}

	c.mu.Lock()
	if e, ok := c.byKey[k]; ok {
		t := e.toast
		c.mu.Unlock()
		return t
	}
	now := c.clock.Now()
	t := Toast{
		ID:        uuid.NewString(),
		Scope:     c.scope,
		Severity:  severity,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	if c.closed {
		c.mu.Unlock()
		return t
	}
	c.seq++
	e := &entry{toast: t, seq: c.seq}
	id := t.ID
	e.timer = c.clock.AfterFunc(c.ttl, func() { c.expire(id) })
	c.byKey[k] = e
	c.byID[id] = k
	sinks := append([]Sink(nil), c.sinks...)
	c.mu.Unlock()

	for _, s := range sinks {
		s.Publish(t)
	}
	return t
}

// Success shows a success toast.
func (c *Center) Success(message string) Toast { return c.Notify(SeveritySuccess, message) }

// Error shows an error toast.
func (c *Center) Error(message string) Toast { return c.Notify(SeverityError, message) }

// Warning shows a warning toast.
func (c *Center) Warning(message string) Toast { return c.Notify(SeverityWarning, message) }

// Info shows an info toast.
func (c *Center) Info(message string) Toast { return c.Notify(SeverityInfo, message) }

// Dismiss closes a toast early. It reports whether the toast was visible.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.remove(id)
	if e == nil {
		return false
	}
	e.timer.Stop()
	return true
}

// Visible returns the visible toasts, oldest first.
func (c *Center) Visible() []Toast {
	c.mu.Lock()
	entries := make([]*entry, 0, len(c.byKey))
	for _, e := range c.byKey {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]Toast, len(entries))
	for i, e := range entries {
		out[i] = e.toast
	}
	return out
}

// Close stops all timers and clears the registry. Later Notify calls
// return toasts without registering them.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.byKey {
		e.timer.Stop()
	}
	c.byKey = make(map[key]*entry)
	c.byID = make(map[string]key)
	c.closed = true
}

func (c *Center) expire(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(id)
}

// remove must be called with c.mu held.
func (c *Center) remove(id string) *entry {
	k, ok := c.byID[id]
	if !ok {
		return nil
	}
	e := c.byKey[k]
	delete(c.byID, id)
	delete(c.byKey, k)
	return e
}
