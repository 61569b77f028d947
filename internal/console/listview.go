package console

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ev-rental-console/internal/models"
)

// ListState is the fetch state of a list view.
type ListState string

const (
	ListIdle    ListState = "idle"
	ListLoading ListState = "loading"
	ListSuccess ListState = "success"
	ListError   ListState = "error"
)

// FetchFunc loads one page of a collection.
type FetchFunc[T, S, F any] func(ctx context.Context, filter F, page, limit int) (*models.Page[T, S], error)

// ListSnapshot is a consistent copy of a list view.
type ListSnapshot[T, S, F any] struct {
	State      ListState         `json:"state"`
	Filter     F                 `json:"filter"`
	Items      []T               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
	Stats      S                 `json:"stats"`
	Error      string            `json:"error,omitempty"`
}

// ListView holds a fetched page of a collection. Every filter, page or
// limit change starts a new fetch; only the newest fetch may write state.
type ListView[T, S, F any] struct {
	mu         sync.Mutex
	name       string
	fetch      FetchFunc[T, S, F]
	env        env
	filter     F
	page       int
	limit      int
	generation uint64
	state      ListState
	items      []T
	pagination models.Pagination
	stats      S
	errMsg     string
}

func newListView[T, S, F any](name string, fetch FetchFunc[T, S, F], filter F, limit int, e env) *ListView[T, S, F] {
	if limit <= 0 {
		limit = 10
	}
	return &ListView[T, S, F]{
		name:   name,
		fetch:  fetch,
		env:    e,
		filter: filter,
		page:   1,
		limit:  limit,
		state:  ListIdle,
	}
}

// SetFilter replaces the filter and reloads from the first page.
func (v *ListView[T, S, F]) SetFilter(ctx context.Context, filter F) error {
	v.mu.Lock()
	v.filter = filter
	v.page = 1
	v.mu.Unlock()
	return v.Reload(ctx)
}

// SetPage moves to page and reloads.
func (v *ListView[T, S, F]) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	v.mu.Lock()
	v.page = page
	v.mu.Unlock()
	return v.Reload(ctx)
}

// SetLimit changes the page size and reloads from the first page.
func (v *ListView[T, S, F]) SetLimit(ctx context.Context, limit int) error {
	if limit < 1 {
		limit = 1
	}
	v.mu.Lock()
	v.limit = limit
	v.page = 1
	v.mu.Unlock()
	return v.Reload(ctx)
}

// Load sets filter, page and limit together and fetches once.
func (v *ListView[T, S, F]) Load(ctx context.Context, filter F, page, limit int) error {
	if page < 1 {
		page = 1
	}
	v.mu.Lock()
	v.filter = filter
	v.page = page
	if limit > 0 {
		v.limit = limit
	}
	v.mu.Unlock()
	return v.Reload(ctx)
}

// Reload fetches the current page again. A failure keeps the items already
// shown and toasts the error.
func (v *ListView[T, S, F]) Reload(ctx context.Context) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.state = ListLoading
	filter, page, limit := v.filter, v.page, v.limit
	v.mu.Unlock()

	result, err := v.fetch(ctx, filter, page, limit)

	v.mu.Lock()
	if gen != v.generation {
		v.mu.Unlock()
		log.WithFields(log.Fields{
			"view":       v.name,
			"generation": gen,
		}).Debug("Discarding superseded list response")
		return nil
	}
	if err != nil {
		v.state = ListError
		v.errMsg = userMessage(v.env.tr, err)
		v.mu.Unlock()
		v.env.fail(err)
		return err
	}
	v.items = result.Items
	v.pagination = result.Pagination
	v.stats = result.Stats
	v.errMsg = ""
	v.state = ListSuccess
	v.mu.Unlock()
	return nil
}

// Snapshot returns the current state.
func (v *ListView[T, S, F]) Snapshot() ListSnapshot[T, S, F] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ListSnapshot[T, S, F]{
		State:      v.state,
		Filter:     v.filter,
		Items:      append([]T(nil), v.items...),
		Pagination: v.pagination,
		Stats:      v.stats,
		Error:      v.errMsg,
	}
}

// Find returns the first held item matching pred.
func (v *ListView[T, S, F]) Find(pred func(T) bool) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, it := range v.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}
