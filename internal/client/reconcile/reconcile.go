// Package reconcile keeps an in-memory collection in step with the server
// across create, update and delete actions without re-fetching it.
//
// Each row key owns at most one RowState. A row is Editing while it holds
// an uncommitted value, Submitting while a commit for it is in flight and
// Errored after a failed commit; a row with no state is Idle. Only one
// commit per key may be in flight. Commits on different keys are
// independent.
package reconcile

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/client/apierr"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
)

// ErrBusy is returned when a commit is already in flight for the key.
var ErrBusy = errors.New("reconcile: commit already in flight")

// Phase is the lifecycle position of a single row.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEditing
	PhaseSubmitting
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseErrored:
		return "errored"
	default:
		return "idle"
	}
}

// RowState is the client-side state of one row. Value is meaningful only
// when HasValue is set.
type RowState[V any] struct {
	Phase    Phase
	Value    V
	HasValue bool
	Err      string

	// rev counts Stage calls so a commit can tell whether the value it
	// submitted is still the staged one.
	rev uint64
}

// Loader fetches the full collection.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Error is a failed Load or Commit. Message is what the operator was shown.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

type settings struct {
	notifier      notify.Notifier
	log           *zap.Logger
	loadFailure   string
	quietLoad     func(error) bool
	refreshNotice string
}

// Option configures a Collection.
type Option func(*settings)

// WithNotifier sets where success and error messages go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *settings) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithLoadFailure sets the fallback message for a failed Load.
func WithLoadFailure(msg string) Option {
	return func(s *settings) { s.loadFailure = msg }
}

// WithQuietLoad suppresses the error notification of a failed Load when
// quiet returns true for the error.
func WithQuietLoad(quiet func(error) bool) Option {
	return func(s *settings) { s.quietLoad = quiet }
}

// WithRefreshNotice sets the message sent after each successful automatic
// refresh.
func WithRefreshNotice(msg string) Option {
	return func(s *settings) { s.refreshNotice = msg }
}

// Collection is a keyed list of server rows of type T with staged values
// of type V.
type Collection[K comparable, T, V any] struct {
	mu     sync.Mutex
	rows   []T
	states map[K]RowState[V]
	loaded bool

	key  func(T) K
	load Loader[T]
	settings
}

// New returns an empty collection. key extracts the natural key of a row.
func New[K comparable, T, V any](key func(T) K, load Loader[T], opts ...Option) *Collection[K, T, V] {
	s := settings{
		notifier:    notify.Nop{},
		log:         zap.NewNop(),
		loadFailure: "Failed to load data",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Collection[K, T, V]{
		states:   make(map[K]RowState[V]),
		key:      key,
		load:     load,
		settings: s,
	}
}

// Load fetches the collection and replaces the rows wholesale. It may be
// called at any time, including while commits are in flight. On failure
// the previous rows are kept.
func (c *Collection[K, T, V]) Load(ctx context.Context) error {
	items, err := c.load(ctx)
	if err != nil {
		msg := apierr.Message(err, apierr.OpGeneric, c.loadFailure)
		c.log.Warn("failed to load collection", zap.String("message", msg), zap.Error(err))
		if c.quietLoad == nil || !c.quietLoad(err) {
			notify.Error(c.notifier, msg)
		}
		return &Error{Message: msg, Err: err}
	}

	rows := make([]T, len(items))
	copy(rows, items)

	c.mu.Lock()
	c.rows = rows
	c.loaded = true
	present := make(map[K]struct{}, len(rows))
	for _, r := range rows {
		present[c.key(r)] = struct{}{}
	}
	for k, st := range c.states {
		if _, ok := present[k]; !ok && st.Phase != PhaseSubmitting {
			delete(c.states, k)
		}
	}
	c.mu.Unlock()

	c.log.Debug("collection loaded", zap.Int("rows", len(rows)))
	return nil
}

// Loaded reports whether a Load has succeeded.
func (c *Collection[K, T, V]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Stage records an uncommitted value for key, replacing any earlier one.
// It clears a previous commit error.
func (c *Collection[K, T, V]) Stage(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.states[key]
	st.Value, st.HasValue, st.Err = v, true, ""
	st.rev++
	if st.Phase != PhaseSubmitting {
		st.Phase = PhaseEditing
	}
	c.states[key] = st
}

// Staged returns the uncommitted value for key.
func (c *Collection[K, T, V]) Staged(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.states[key]
	return st.Value, st.HasValue
}

// Discard drops the staged value and error for key.
func (c *Collection[K, T, V]) Discard(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discardLocked(key)
}

// Reset drops every staged value and error. In-flight commits keep their
// busy flag until they settle.
func (c *Collection[K, T, V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.states {
		c.discardLocked(k)
	}
}

func (c *Collection[K, T, V]) discardLocked(key K) {
	st, ok := c.states[key]
	if !ok {
		return
	}
	if st.Phase != PhaseSubmitting {
		delete(c.states, key)
		return
	}
	var zero V
	st.Value, st.HasValue, st.Err = zero, false, ""
	c.states[key] = st
}

// State returns the row state for key. Rows without state are Idle.
func (c *Collection[K, T, V]) State(key K) RowState[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[key]
}

// Busy reports whether a commit for key is in flight.
func (c *Collection[K, T, V]) Busy(key K) bool {
	return c.State(key).Phase == PhaseSubmitting
}

// Get returns the server row for key.
func (c *Collection[K, T, V]) Get(key K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(key); i >= 0 {
		return c.rows[i], true
	}
	var zero T
	return zero, false
}

// Rows returns a copy of the server rows in order.
func (c *Collection[K, T, V]) Rows() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.rows))
	copy(out, c.rows)
	return out
}

// Len returns the number of server rows.
func (c *Collection[K, T, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Row is one entry of View.
type Row[K comparable, T, V any] struct {
	Key       K
	Item      T
	Staged    V
	HasStaged bool
	Phase     Phase
	Busy      bool
	Err       string
}

// View returns every row joined with its state.
func (c *Collection[K, T, V]) View() []Row[K, T, V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Row[K, T, V], 0, len(c.rows))
	for _, item := range c.rows {
		k := c.key(item)
		st := c.states[k]
		out = append(out, Row[K, T, V]{
			Key:       k,
			Item:      item,
			Staged:    st.Value,
			HasStaged: st.HasValue,
			Phase:     st.Phase,
			Busy:      st.Phase == PhaseSubmitting,
			Err:       st.Err,
		})
	}
	return out
}

func (c *Collection[K, T, V]) indexLocked(key K) int {
	for i, r := range c.rows {
		if c.key(r) == key {
			return i
		}
	}
	return -1
}
