package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/client/apierr"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
)

// PatchKind says how a confirmed commit changes the rows.
type PatchKind int

const (
	// PatchKeep leaves the rows as they are.
	PatchKeep PatchKind = iota
	// PatchUpsert replaces the row with the same key or appends it.
	PatchUpsert
	// PatchRemove splices out the row with the commit key.
	PatchRemove
)

// Patch is the server's confirmation of a commit.
type Patch[T any] struct {
	Kind PatchKind
	Row  T
}

// Upsert patches row in place, or splices it in when its key is new.
func Upsert[T any](row T) Patch[T] { return Patch[T]{Kind: PatchUpsert, Row: row} }

// Remove splices the committed row out.
func Remove[T any]() Patch[T] { return Patch[T]{Kind: PatchRemove} }

// Keep confirms without changing the rows.
func Keep[T any]() Patch[T] { return Patch[T]{Kind: PatchKeep} }

// Op is one server action on a row. Do receives the staged value, if
// any, and runs without the collection lock held.
type Op[T, V any] struct {
	Name    string
	Do      func(ctx context.Context, staged V, hasStaged bool) (Patch[T], error)
	Success string // notification on success, none when empty
	Failure string // fallback error message

	// Consumes marks ops that submit the staged value. Only they clear it
	// on success; other ops leave a staged edit in place.
	Consumes bool

	// Describe overrides how a failure is worded.
	Describe func(error) string
}

func (op Op[T, V]) describe(err error) string {
	if op.Describe != nil {
		return op.Describe(err)
	}
	return apierr.Message(err, apierr.OpGeneric, op.Failure)
}

// Commit runs op for an existing row. It is a no-op for a key that is not
// in the collection and fails with ErrBusy while another commit for the
// key is in flight.
//
// On success the patch is applied to the rows as they are at that moment.
// The staged value is cleared only when op consumed it and it was not
// re-staged while the commit ran. On failure the rows are untouched, the
// row is Errored and keeps its staged value.
func (c *Collection[K, T, V]) Commit(ctx context.Context, key K, op Op[T, V]) error {
	c.mu.Lock()
	if c.indexLocked(key) < 0 {
		c.mu.Unlock()
		c.log.Debug("commit on missing row ignored", zap.String("op", op.Name), zap.Any("key", key))
		return nil
	}
	return c.runLocked(ctx, key, op)
}

// Create runs op for a key that need not exist yet, typically with an
// Upsert patch that splices the new row in.
func (c *Collection[K, T, V]) Create(ctx context.Context, key K, op Op[T, V]) error {
	c.mu.Lock()
	return c.runLocked(ctx, key, op)
}

// runLocked is entered with c.mu held and releases it.
func (c *Collection[K, T, V]) runLocked(ctx context.Context, key K, op Op[T, V]) error {
	st := c.states[key]
	if st.Phase == PhaseSubmitting {
		c.mu.Unlock()
		return ErrBusy
	}
	staged, hasStaged, rev := st.Value, st.HasValue, st.rev
	st.Phase, st.Err = PhaseSubmitting, ""
	c.states[key] = st
	c.mu.Unlock()

	patch, err := op.Do(ctx, staged, hasStaged)

	c.mu.Lock()
	if err != nil {
		msg := op.describe(err)
		st := c.states[key]
		st.Phase, st.Err = PhaseErrored, msg
		c.states[key] = st
		c.mu.Unlock()

		c.log.Info("commit failed",
			zap.String("op", op.Name),
			zap.Any("key", key),
			zap.String("kind", apierr.KindOf(err).String()),
			zap.Error(err),
		)
		notify.Error(c.notifier, msg)
		return &Error{Message: msg, Err: err}
	}

	c.applyLocked(key, patch)
	c.settleLocked(key, patch, op.Consumes && hasStaged, rev)
	c.mu.Unlock()

	c.log.Debug("commit applied", zap.String("op", op.Name), zap.Any("key", key))
	if op.Success != "" {
		notify.Success(c.notifier, op.Success)
	}
	return nil
}

// settleLocked updates the row state after a successful commit.
func (c *Collection[K, T, V]) settleLocked(key K, p Patch[T], consumed bool, rev uint64) {
	st := c.states[key]
	if consumed && st.rev == rev {
		var zero V
		st.Value, st.HasValue = zero, false
	}
	if p.Kind == PatchRemove || !st.HasValue {
		delete(c.states, key)
		return
	}
	st.Phase, st.Err = PhaseEditing, ""
	c.states[key] = st
}

func (c *Collection[K, T, V]) applyLocked(key K, p Patch[T]) {
	switch p.Kind {
	case PatchUpsert:
		i := c.indexLocked(key)
		if i < 0 {
			i = c.indexLocked(c.key(p.Row))
		}
		if i >= 0 {
			c.rows[i] = p.Row
			return
		}
		c.rows = append(c.rows, p.Row)
	case PatchRemove:
		if i := c.indexLocked(key); i >= 0 {
			c.rows = append(c.rows[:i:i], c.rows[i+1:]...)
		}
	}
}
