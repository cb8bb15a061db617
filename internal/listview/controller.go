// filepath: internal/listview/controller.go
package listview

import (
	"context"
	"errors"
	"sync"

	"scmdash/internal/logging"

	"golang.org/x/sync/errgroup"
)

// ErrMutationInFlight is returned when a change is attempted while another one
// on the same page has not answered yet.
var ErrMutationInFlight = errors.New("another change is still in progress")

// State is the mutation state of a controller.
type State int

const (
	Idle State = iota
	InFlight
)

func (s State) String() string {
	if s == InFlight {
		return "in-flight"
	}
	return "idle"
}

// Sides holds the side-collections of a page by name.
type Sides map[string]any

// SideAs returns the named side-collection as X, or X's zero value when it is
// absent or failed to load.
func SideAs[X any](s Sides, name string) X {
	v, _ := s[name].(X)
	return v
}

// SideFetch loads one side-collection.
type SideFetch struct {
	Name  string
	Fetch func(ctx context.Context) (any, error)
}

// Config parameterizes a Controller for one record type.
type Config[T any, S any] struct {
	Name     string
	PageSize int
	Rules    Rules[T]
	ID       func(T) int64
	Fetch    func(ctx context.Context) ([]T, error)
	Sides    []SideFetch
	Stats    func(items []T, sides Sides) S
	// Prepend puts created records at the top instead of the bottom.
	Prepend bool
	// Describe turns a failed call into the operator-facing message.
	Describe func(err error, fallback string) string
}

// Op is the kind of change a Mutation makes to the local collection.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
)

// Mutation is one backend call plus how its answer is merged.
type Mutation[T any] struct {
	Op Op
	// ID names the record removed by OpDelete.
	ID       int64
	Call     func(ctx context.Context) (T, error)
	Fallback string
	// Prefix is prepended to the failure message.
	Prefix string
	// ReloadSides refetches the side-collections after success.
	ReloadSides bool
	// Refetch reloads the whole collection after success instead of
	// trusting the merged answer alone.
	Refetch bool
}

// MutationError carries the message to show for a failed change.
type MutationError struct {
	Message string
	Err     error
}

func (e *MutationError) Error() string { return e.Message }
func (e *MutationError) Unwrap() error { return e.Err }

// Controller owns the state of one list page.
type Controller[T any, S any] struct {
	cfg Config[T, S]

	mu       sync.Mutex
	items    []T
	sides    Sides
	sel      Selector
	filtered []T
	page     int
	stats    S
	state    State
}

// New creates an empty controller. Call Load to populate it.
func New[T any, S any](cfg Config[T, S]) *Controller[T, S] {
	if cfg.Describe == nil {
		cfg.Describe = func(err error, fallback string) string {
			if fallback != "" {
				return fallback
			}
			return err.Error()
		}
	}
	c := &Controller[T, S]{
		cfg:   cfg,
		items: []T{},
		sides: Sides{},
		sel:   Selector{Tab: All, Filters: map[string]string{}},
		page:  1,
	}
	c.recompute()
	return c
}

// Load fetches the collection and the side-collections concurrently. A
// failing side-collection is logged and left empty; a failing primary fetch
// is returned and leaves the current collection untouched.
func (c *Controller[T, S]) Load(ctx context.Context) error {
	var items []T
	sides := make([]any, len(c.cfg.Sides))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := c.cfg.Fetch(gctx)
		if err != nil {
			return err
		}
		items = list
		return nil
	})
	for i, side := range c.cfg.Sides {
		g.Go(func() error {
			sides[i] = c.fetchSide(gctx, side)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.Log.WithField("page", c.cfg.Name).Debugf("Load failed: %v", err)
		return err
	}

	if items == nil {
		items = []T{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.sides = Sides{}
	for i, side := range c.cfg.Sides {
		if sides[i] != nil {
			c.sides[side.Name] = sides[i]
		}
	}
	c.recompute()
	return nil
}

func (c *Controller[T, S]) fetchSide(ctx context.Context, side SideFetch) any {
	v, err := side.Fetch(ctx)
	if err != nil {
		logging.Log.WithField("page", c.cfg.Name).Warnf("Failed to load %s: %v", side.Name, err)
		return nil
	}
	return v
}

func (c *Controller[T, S]) reloadSides(ctx context.Context) {
	fresh := Sides{}
	for _, side := range c.cfg.Sides {
		if v := c.fetchSide(ctx, side); v != nil {
			fresh[side.Name] = v
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sides = fresh
	c.stats = c.computeStats()
}

// recompute reruns statistics and the pipeline. Callers hold mu.
func (c *Controller[T, S]) recompute() {
	c.stats = c.computeStats()
	c.refilter()
}

func (c *Controller[T, S]) computeStats() S {
	var zero S
	if c.cfg.Stats == nil {
		return zero
	}
	return c.cfg.Stats(c.items, c.sides)
}

// refilter rebuilds the filtered view and goes back to page 1.
func (c *Controller[T, S]) refilter() {
	c.filtered = Filter(c.items, c.cfg.Rules, c.sel)
	c.page = 1
}

// SetTab selects a tab by key. Unknown keys behave like All.
func (c *Controller[T, S]) SetTab(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key == "" {
		key = All
	}
	c.sel.Tab = key
	c.refilter()
}

// SetFilter sets one structured filter. All or "" clears it.
func (c *Controller[T, S]) SetFilter(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" || value == All {
		delete(c.sel.Filters, key)
	} else {
		c.sel.Filters[key] = value
	}
	c.refilter()
}

// SetQuery sets the free-text search query.
func (c *Controller[T, S]) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Query = q
	c.refilter()
}

// Selector returns a copy of the current selectors.
func (c *Controller[T, S]) Selector() Selector {
	c.mu.Lock()
	defer c.mu.Unlock()
	filters := make(map[string]string, len(c.sel.Filters))
	for k, v := range c.sel.Filters {
		filters[k] = v
	}
	return Selector{Tab: c.sel.Tab, Filters: filters, Query: c.sel.Query}
}

// Items returns the full unfiltered collection.
func (c *Controller[T, S]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Filtered returns the collection after tab, filters and search.
func (c *Controller[T, S]) Filtered() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.filtered...)
}

// Page returns the visible slice of the filtered collection.
func (c *Controller[T, S]) Page() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Paginate(c.filtered, c.page, c.cfg.PageSize)
}

// GoToPage moves to page n. It is a no-op outside [1, TotalPages].
func (c *Controller[T, S]) GoToPage(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > TotalPages(len(c.filtered), c.cfg.PageSize) {
		return false
	}
	c.page = n
	return true
}

// Pagination returns the derived page state.
func (c *Controller[T, S]) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := TotalPages(len(c.filtered), c.cfg.PageSize)
	return Pagination{
		Page:       c.page,
		PageSize:   c.cfg.PageSize,
		TotalPages: total,
		TotalItems: len(c.filtered),
		Window:     PageWindow(c.page, total),
	}
}

// Stats returns the aggregate over the full collection.
func (c *Controller[T, S]) Stats() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Side returns a side-collection by name, or nil.
func (c *Controller[T, S]) Side(name string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sides[name]
}

// Sides returns all loaded side-collections.
func (c *Controller[T, S]) Sides() Sides {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(Sides, len(c.sides))
	for k, v := range c.sides {
		out[k] = v
	}
	return out
}

// State reports whether a mutation is awaiting its answer.
func (c *Controller[T, S]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mutate performs one change. Only one change may be in flight at a time.
// On success the returned record is merged by id and statistics and the
// pipeline rerun; on failure the collection is left as it was. An answer
// without a record (zero id) is not merged; the collection is refetched.
func (c *Controller[T, S]) Mutate(ctx context.Context, m Mutation[T]) (T, error) {
	var zero T

	c.mu.Lock()
	if c.state == InFlight {
		c.mu.Unlock()
		return zero, ErrMutationInFlight
	}
	c.state = InFlight
	c.mu.Unlock()

	record, err := m.Call(ctx)

	c.mu.Lock()
	c.state = Idle
	if err != nil {
		c.mu.Unlock()
		logging.Log.WithField("page", c.cfg.Name).Debugf("Change failed: %v", err)
		return zero, &MutationError{Message: m.Prefix + c.cfg.Describe(err, m.Fallback), Err: err}
	}
	refetch := m.Refetch
	if m.Op != OpDelete && c.cfg.ID(record) == 0 {
		refetch = true
	} else {
		c.merge(m, record)
		c.recompute()
	}
	c.mu.Unlock()

	if refetch {
		if err := c.Load(ctx); err != nil {
			logging.Log.WithField("page", c.cfg.Name).Warnf("Refetch after change failed: %v", err)
		}
		return record, nil
	}
	if m.ReloadSides && len(c.cfg.Sides) > 0 {
		c.reloadSides(ctx)
	}
	return record, nil
}

// merge applies a successful answer to the collection. Callers hold mu.
func (c *Controller[T, S]) merge(m Mutation[T], record T) {
	if m.Op == OpDelete {
		for i, item := range c.items {
			if c.cfg.ID(item) == m.ID {
				c.items = append(c.items[:i:i], c.items[i+1:]...)
				return
			}
		}
		return
	}

	id := c.cfg.ID(record)
	for i, item := range c.items {
		if c.cfg.ID(item) == id {
			c.items[i] = record
			return
		}
	}
	if c.cfg.Prepend {
		c.items = append([]T{record}, c.items...)
	} else {
		c.items = append(c.items, record)
	}
}
