package console

import (
	"context"
	"sync"

	"github.com/ukydev/ev-rental-console/internal/mutation"
)

// ConfirmState is the state of a two-step delete.
type ConfirmState string

const (
	ConfirmIdle      ConfirmState = "idle"
	ConfirmRequested ConfirmState = "requested"
	ConfirmDeleting  ConfirmState = "deleting"
	ConfirmDeleted   ConfirmState = "deleted"
)

// DeleteConfirm guards a destructive call behind Request then Confirm.
type DeleteConfirm struct {
	mu    sync.Mutex
	state ConfirmState
	del   func(ctx context.Context) error
}

// NewDeleteConfirm wraps del.
func NewDeleteConfirm(del func(ctx context.Context) error) *DeleteConfirm {
	return &DeleteConfirm{state: ConfirmIdle, del: del}
}

// State returns the current state.
func (d *DeleteConfirm) State() ConfirmState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Request asks for confirmation.
func (d *DeleteConfirm) Request() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == ConfirmDeleting {
		return mutation.ErrInFlight
	}
	d.state = ConfirmRequested
	return nil
}

// Cancel withdraws a request.
func (d *DeleteConfirm) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == ConfirmDeleting {
		return mutation.ErrInFlight
	}
	if d.state == ConfirmRequested {
		d.state = ConfirmIdle
	}
	return nil
}

// Confirm performs the delete. It fails with ErrNotRequested unless Request
// came first; a failed delete stays requested so it can be confirmed again.
func (d *DeleteConfirm) Confirm(ctx context.Context) error {
	d.mu.Lock()
	switch d.state {
	case ConfirmDeleting:
		d.mu.Unlock()
		return mutation.ErrInFlight
	case ConfirmRequested:
	default:
		d.mu.Unlock()
		return ErrNotRequested
	}
	d.state = ConfirmDeleting
	d.mu.Unlock()

	err := d.del(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = ConfirmRequested
		return err
	}
	d.state = ConfirmDeleted
	return nil
}
