// Package mutation implements optimistic updates with rollback.
//
// A Mutation owns a working copy of a value. Submit applies a local change
// immediately, runs the remote call, then either reconciles the working copy
// with the server's answer or restores the pre-submit snapshot.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State of a mutation.
type State string

const (
	StateIdle       State = "idle"
	StatePending    State = "pending"
	StateSuccess    State = "success"
	StateRolledBack State = "rolled_back"
)

var (
	// ErrInFlight is returned when a submit is attempted while another is pending.
	ErrInFlight = errors.New("mutation already in flight")
	// ErrInvalidTransition is returned for a state change the machine does not allow.
	ErrInvalidTransition = errors.New("invalid mutation state transition")
)

var transitions = map[State]map[State]struct{}{
	StateIdle:       {StatePending: {}},
	StatePending:    {StateSuccess: {}, StateRolledBack: {}},
	StateSuccess:    {StatePending: {}},
	StateRolledBack: {StatePending: {}},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	_, ok := transitions[from][to]
	return ok
}

// CallFunc performs the remote mutation on the optimistic value and returns
// the authoritative value.
type CallFunc[T any] func(ctx context.Context, optimistic T) (T, error)

// ReconcileFunc merges the server answer into local state.
type ReconcileFunc[T any] func(optimistic, server T) T

// Mutation holds a value and the state of the last submit.
type Mutation[T any] struct {
	mu        sync.Mutex
	state     State
	value     T
	lastErr   error
	clone     func(T) T
	reconcile ReconcileFunc[T]
}

// Option configures a Mutation.
type Option[T any] func(*Mutation[T])

// WithReconcile replaces the default reconciliation, which takes the server value as is.
func WithReconcile[T any](fn ReconcileFunc[T]) Option[T] {
	return func(m *Mutation[T]) { m.reconcile = fn }
}

// New creates a mutation seeded with initial. clone must return a deep
// enough copy that edits to it never reach the original; nil means T is
// safe to copy by value.
func New[T any](initial T, clone func(T) T, opts ...Option[T]) *Mutation[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	m := &Mutation[T]{
		state:     StateIdle,
		clone:     clone,
		reconcile: func(_, server T) T { return server },
	}
	m.value = clone(initial)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Value returns a copy of the current value.
func (m *Mutation[T]) Value() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clone(m.value)
}

// State returns the current state.
func (m *Mutation[T]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pending reports whether a submit is in flight.
func (m *Mutation[T]) Pending() bool {
	return m.State() == StatePending
}

// Err returns the error of the last rolled back submit.
func (m *Mutation[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Replace overwrites the value outside of a submit, e.g. after a refresh.
func (m *Mutation[T]) Replace(v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StatePending {
		return ErrInFlight
	}
	m.value = m.clone(v)
	return nil
}

// Submit applies the optimistic change and runs call. On success the value
// becomes reconcile(optimistic, server); on failure it is restored to the
// snapshot taken before apply.
func (m *Mutation[T]) Submit(ctx context.Context, apply func(*T), call CallFunc[T]) (T, error) {
	m.mu.Lock()
	if err := m.transition(StatePending); err != nil {
		m.mu.Unlock()
		var zero T
		return zero, err
	}
	snapshot := m.clone(m.value)
	optimistic := m.clone(m.value)
	if apply != nil {
		apply(&optimistic)
	}
	m.value = m.clone(optimistic)
	m.mu.Unlock()

	server, err := call(ctx, m.clone(optimistic))

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.value = snapshot
		m.lastErr = err
		_ = m.transition(StateRolledBack)
		return m.clone(snapshot), err
	}
	m.value = m.reconcile(optimistic, server)
	m.lastErr = nil
	_ = m.transition(StateSuccess)
	return m.clone(m.value), nil
}

// transition must be called with m.mu held.
func (m *Mutation[T]) transition(to State) error {
	if m.state == StatePending && to == StatePending {
		return ErrInFlight
	}
	if !CanTransition(m.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, to)
	}
	m.state = to
	return nil
}
