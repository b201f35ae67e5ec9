// Package cache holds the current known state of one entity collection
// and applies user intents optimistically: the local collection mutates
// synchronously, the backend call runs asynchronously, and on failure
// the pre-mutation snapshot is restored. Reconciliation is keyed on
// record identity, so server confirmations may arrive in any order.
//
// One generic Store serves every entity kind; per-kind behavior
// (identity, ordering, manual sequencing) is supplied via Config.
package cache

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	"keepsake/internal/logging"
)

// ErrClosed is returned by mutations issued after Close.
var ErrClosed = errors.New("store closed")

// tempIDPrefix marks client-generated placeholder ids for records whose
// create call has not yet been confirmed.
const tempIDPrefix = "pending-"

// Remote is the gateway surface the store dispatches to. Delete must
// treat "already gone" as success; Update must surface unknown ids as
// remote.ErrNotFound (the store downgrades those to no-ops).
type Remote[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, rec T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Config parameterizes a Store for one entity kind.
type Config[T any] struct {
	// Name identifies the collection in logs.
	Name string

	// Key returns the record id; WithKey returns a copy carrying the
	// given id (used for temporary ids and their replacement).
	Key     func(T) string
	WithKey func(T, string) T

	// Less is the display ordering for Snapshot.
	Less func(a, b T) bool

	// OrderOf and WithOrder expose the manual sequencing field; both
	// nil for kinds without drag-reorder.
	OrderOf   func(T) (int, bool)
	WithOrder func(T, int) T

	// NotFoundIsNoOp reports whether err means "record unknown to the
	// server"; such update/delete outcomes neither commit nor roll
	// back. Nil means no error is treated that way.
	NotFoundIsNoOp func(error) bool

	Remote Remote[T]
	Logger logging.Logger
}

// Store is an in-memory, keyed snapshot of one entity collection with
// optimistic mutations.
type Store[T any] struct {
	cfg Config[T]

	mu       sync.Mutex
	items    map[string]T
	revs     map[string]uint64 // bumped on every local apply, never rolled back
	subs     map[int]func([]T)
	nextSub  int
	closed   bool
	inflight sync.WaitGroup
}

func New[T any](cfg Config[T]) *Store[T] {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Store[T]{
		cfg:   cfg,
		items: make(map[string]T),
		revs:  make(map[string]uint64),
		subs:  make(map[int]func([]T)),
	}
}

// Load fetches the authoritative collection and installs it.
func (s *Store[T]) Load(ctx context.Context) error {
	items, err := s.cfg.Remote.List(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.cfg.Name, err)
	}
	s.Replace(items)
	return nil
}

// Replace installs a server-pushed snapshot, preserving records whose
// create call is still in flight.
func (s *Store[T]) Replace(items []T) {
	s.mu.Lock()
	next := make(map[string]T, len(items))
	for id, rec := range s.items {
		if isTempID(id) {
			next[id] = rec
		}
	}
	for _, rec := range items {
		next[s.cfg.Key(rec)] = rec
	}
	s.items = next
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns the collection sorted by the display ordering.
func (s *Store[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// Get returns one record by id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[id]
	return rec, ok
}

// Subscribe registers fn to receive every subsequent snapshot. The
// returned function unsubscribes.
func (s *Store[T]) Subscribe(fn func([]T)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Create inserts the record locally under a temporary id and dispatches
// the backend create. On confirmation the placeholder is replaced by
// the authoritative record; on failure the pre-mutation snapshot is
// restored. The optimistic record is returned immediately.
func (s *Store[T]) Create(ctx context.Context, rec T) (T, error) {
	tempID := tempIDPrefix + uuid.NewString()
	optimistic := s.cfg.WithKey(rec, tempID)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		var zero T
		return zero, ErrClosed
	}
	snap := maps.Clone(s.items)
	s.items[tempID] = optimistic
	issued := s.bumpLocked(tempID)
	s.mu.Unlock()
	s.notify()

	s.dispatch(ctx, snap, func(ctx context.Context) error {
		created, err := s.cfg.Remote.Create(ctx, rec)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil
		}
		local, present := s.items[tempID]
		delete(s.items, tempID)
		serverID := s.cfg.Key(created)
		switch {
		case !present:
			// Deleted locally before the create confirmed; remove the
			// record the server just made so both sides agree.
			s.mu.Unlock()
			if err := s.cfg.Remote.Delete(ctx, serverID); err != nil {
				s.cfg.Logger.Error(ctx, "failed to delete record created after local removal",
					"store", s.cfg.Name, "id", serverID, "error", err)
			}
			s.notify()
			return nil
		case s.revs[tempID] != issued:
			// Edited while saving: keep the newer local fields, adopt
			// the server identity.
			s.items[serverID] = s.cfg.WithKey(local, serverID)
		default:
			s.items[serverID] = created
		}
		s.mu.Unlock()
		s.notify()
		return nil
	})

	return optimistic, nil
}

// Update applies the record locally and dispatches the backend update.
// A server "not found" is a no-op; any other failure rolls back.
func (s *Store[T]) Update(ctx context.Context, rec T) (T, error) {
	id := s.cfg.Key(rec)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		var zero T
		return zero, ErrClosed
	}
	snap := maps.Clone(s.items)
	s.items[id] = rec
	issued := s.bumpLocked(id)
	s.mu.Unlock()
	s.notify()

	s.dispatch(ctx, snap, func(ctx context.Context) error {
		updated, err := s.cfg.Remote.Update(ctx, rec)
		if err != nil {
			if s.isNotFound(err) {
				return nil
			}
			return err
		}
		s.commit(ctx, id, issued, updated)
		return nil
	})

	return rec, nil
}

// Delete removes the record locally and dispatches the backend delete.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	snap := maps.Clone(s.items)
	delete(s.items, id)
	s.bumpLocked(id)
	s.mu.Unlock()
	s.notify()

	s.dispatch(ctx, snap, func(ctx context.Context) error {
		err := s.cfg.Remote.Delete(ctx, id)
		if err != nil && s.isNotFound(err) {
			return nil
		}
		return err
	})
	return nil
}

// Move repositions the record to index within the display ordering and
// recomputes every affected record's order to its positional index.
// Only records whose order actually changed are persisted.
func (s *Store[T]) Move(ctx context.Context, id string, index int) error {
	if s.cfg.OrderOf == nil || s.cfg.WithOrder == nil {
		return fmt.Errorf("%s: manual ordering not supported", s.cfg.Name)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if _, ok := s.items[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s: no record %q", s.cfg.Name, id)
	}
	snap := maps.Clone(s.items)

	seq := s.sortedLocked()
	from := 0
	for i, rec := range seq {
		if s.cfg.Key(rec) == id {
			from = i
			break
		}
	}
	if index < 0 {
		index = 0
	}
	if index >= len(seq) {
		index = len(seq) - 1
	}
	moved := seq[from]
	seq = append(seq[:from], seq[from+1:]...)
	seq = append(seq[:index], append([]T{moved}, seq[index:]...)...)

	type change struct {
		rec    T
		issued uint64
	}
	var changed []change
	for i, rec := range seq {
		if cur, ok := s.cfg.OrderOf(rec); ok && cur == i {
			continue
		}
		next := s.cfg.WithOrder(rec, i)
		key := s.cfg.Key(next)
		s.items[key] = next
		changed = append(changed, change{rec: next, issued: s.bumpLocked(key)})
	}
	s.mu.Unlock()
	s.notify()

	if len(changed) == 0 {
		return nil
	}

	s.dispatch(ctx, snap, func(ctx context.Context) error {
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			first error
		)
		for _, ch := range changed {
			wg.Add(1)
			go func() {
				defer wg.Done()
				updated, err := s.cfg.Remote.Update(ctx, ch.rec)
				if err != nil {
					if s.isNotFound(err) {
						return
					}
					mu.Lock()
					if first == nil {
						first = err
					}
					mu.Unlock()
					return
				}
				s.commit(ctx, s.cfg.Key(ch.rec), ch.issued, updated)
			}()
		}
		wg.Wait()
		return first
	})
	return nil
}

// Await blocks until no mutation is in flight or ctx is done.
func (s *Store[T]) Await(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close suppresses the effects of confirmations still in flight and
// rejects further mutations. It does not cancel the calls themselves.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// commit installs the server-confirmed record unless a newer local
// mutation superseded it (local last-write-wins) or the record was
// removed locally in the meantime.
func (s *Store[T]) commit(ctx context.Context, id string, issued uint64, confirmed T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if _, present := s.items[id]; !present || s.revs[id] != issued {
		s.mu.Unlock()
		return
	}
	s.items[id] = confirmed
	s.mu.Unlock()
	s.notify()
}

// dispatch runs op asynchronously; on failure it restores the given
// snapshot and notifies subscribers.
func (s *Store[T]) dispatch(ctx context.Context, snap map[string]T, op func(context.Context) error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		err := op(ctx)
		if err == nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.items = snap
		s.mu.Unlock()
		s.notify()
		s.cfg.Logger.Error(ctx, "mutation failed, rolled back", "store", s.cfg.Name, "error", err)
	}()
}

func (s *Store[T]) isNotFound(err error) bool {
	return s.cfg.NotFoundIsNoOp != nil && s.cfg.NotFoundIsNoOp(err)
}

func (s *Store[T]) bumpLocked(id string) uint64 {
	s.revs[id]++
	return s.revs[id]
}

func (s *Store[T]) sortedLocked() []T {
	out := make([]T, 0, len(s.items))
	for _, rec := range s.items {
		out = append(out, rec)
	}
	if s.cfg.Less != nil {
		sort.Slice(out, func(i, j int) bool { return s.cfg.Less(out[i], out[j]) })
	}
	return out
}

func (s *Store[T]) notify() {
	s.mu.Lock()
	snap := s.sortedLocked()
	fns := make([]func([]T), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func isTempID(id string) bool {
	return len(id) > len(tempIDPrefix) && id[:len(tempIDPrefix)] == tempIDPrefix
}
