package queue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"larder/internal/recipe"
)

var (
	// ErrNotFound is returned when no item carries the requested id.
	ErrNotFound = errors.New("queue: item not found")
	// ErrTerminal is returned when an update targets an item that already
	// reached a terminal status.
	ErrTerminal = errors.New("queue: item already terminal")
)

// Store is the ordered collection of queue items. Items keep strict submission
// order; updates are atomic per item and enforce the lifecycle invariants
// (monotonic progress, write-once image URL, no transitions out of a terminal
// status).
type Store struct {
	mu    sync.RWMutex
	items []*Item
	index map[string]*Item
	now   func() time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		index: make(map[string]*Item),
		now:   time.Now,
	}
}

// Add appends a new queued item and returns a snapshot of it. Ids are unique
// and never reused.
func (s *Store) Add(fileName, sourcePath string) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &Item{
		ID:         uuid.NewString(),
		FileName:   fileName,
		SourcePath: sourcePath,
		Status:     StatusQueued,
		CreatedAt:  s.now().UTC(),
	}
	s.items = append(s.items, item)
	s.index[item.ID] = item
	return item.clone()
}

// Get returns a snapshot of the item with the given id.
func (s *Store) Get(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return item.clone(), true
}

// List returns snapshots of all items in submission order, optionally filtered
// by status.
func (s *Store) List(statuses ...Status) []Item {
	filter := make(map[Status]struct{}, len(statuses))
	for _, status := range statuses {
		filter[status] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if len(filter) > 0 {
			if _, ok := filter[item.Status]; !ok {
				continue
			}
		}
		out = append(out, item.clone())
	}
	return out
}

// Stats returns per-status item counts.
func (s *Store) Stats() map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := make(map[Status]int)
	for _, item := range s.items {
		stats[item.Status]++
	}
	return stats
}

// NextQueued returns a snapshot of the first item still waiting to be
// processed, preserving FIFO submission order.
func (s *Store) NextQueued() (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.Status == StatusQueued {
			return item.clone(), true
		}
	}
	return Item{}, false
}

// SetStatus transitions an item to a new status with the given progress.
func (s *Store) SetStatus(id string, status Status, progress int) error {
	return s.update(id, func(item *Item) {
		item.Status = status
		item.Progress = progress
	})
}

// SetProgress advances an item's progress without changing status.
func (s *Store) SetProgress(id string, progress int) error {
	return s.update(id, func(item *Item) {
		item.Progress = progress
	})
}

// SetImageURL records the uploaded image location. The first write wins.
func (s *Store) SetImageURL(id, imageURL string) error {
	return s.update(id, func(item *Item) {
		item.ImageURL = imageURL
	})
}

// SetRecord attaches (or replaces) the parsed recipe record.
func (s *Store) SetRecord(id string, rec recipe.Record) error {
	return s.update(id, func(item *Item) {
		item.Record = &rec
	})
}

// Complete marks an item terminal with the persisted record, clearing any
// transient error text.
func (s *Store) Complete(id string, rec recipe.Record) error {
	return s.update(id, func(item *Item) {
		item.Status = StatusComplete
		item.Progress = 100
		item.Record = &rec
		item.Error = ""
	})
}

// Fail marks an item terminal with a human-readable error message. The record
// is dropped so terminal items carry exactly one of {record, error}.
func (s *Store) Fail(id, message string) error {
	return s.update(id, func(item *Item) {
		item.Status = StatusError
		item.Progress = 100
		item.Error = message
		item.Record = nil
	})
}

// MarkViewed flags a terminal item as already surfaced to the user, so its
// completion is signalled at most once. Unlike other mutations it is legal on
// terminal items.
func (s *Store) MarkViewed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	item.Viewed = true
	return nil
}

// NextCompletedUnviewed returns the most recently completed item that has not
// been surfaced yet.
func (s *Store) NextCompletedUnviewed() (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.items) - 1; i >= 0; i-- {
		item := s.items[i]
		if item.Status == StatusComplete && !item.Viewed {
			return item.clone(), true
		}
	}
	return Item{}, false
}

// ClearTerminal removes all complete and error items, preserving the relative
// order of the remaining ones. It returns the number of removed items.
func (s *Store) ClearTerminal() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if item.Terminal() {
			delete(s.index, item.ID)
			removed++
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = nil
	}
	s.items = kept
	return removed
}

// Len reports the number of items currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// update applies a mutation atomically, then enforces the item invariants:
// terminal items reject further updates, progress never decreases, and the
// image URL is immutable once set.
func (s *Store) update(id string, mutate func(*Item)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if item.Terminal() {
		return fmt.Errorf("%w: %s", ErrTerminal, id)
	}

	before := *item
	mutate(item)

	if item.Progress < before.Progress {
		item.Progress = before.Progress
	}
	if item.Progress > 100 {
		item.Progress = 100
	}
	if before.ImageURL != "" {
		item.ImageURL = before.ImageURL
	}
	return nil
}
