// Package todo holds the in-memory task list behind the todo demo endpoints.
//
// Items keep insertion order and receive monotonically increasing ids that are
// never reused, even after deletion. All operations are serialized by a
// single mutex so the store is safe to share between HTTP handlers.
package todo

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrEmptyTask is reported when a todo is created without task text.
var ErrEmptyTask = errors.New("task cannot be empty")

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Item is a single task in the store. Items are immutable once created.
type Item struct {
	ID        int
	Task      string
	CreatedAt time.Time
}

// Store is an ordered, mutex-protected collection of todo items.
type Store struct {
	mu     sync.Mutex
	items  []Item
	nextID int
	now    func() time.Time
}

// NewStore creates an empty store whose first item will receive id 1.
func NewStore() *Store {
	return &Store{
		nextID: 1,
		now:    time.Now,
	}
}

// List returns a copy of the items in insertion order.
func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Add appends a new item for task. An empty task is rejected with a
// *ValidationError wrapping ErrEmptyTask and leaves the store unchanged.
func (s *Store) Add(task string) (Item, error) {
	if task == "" {
		return Item{}, &ValidationError{Field: "task", Err: ErrEmptyTask}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := Item{
		ID:        s.nextID,
		Task:      task,
		CreatedAt: s.now(),
	}
	s.nextID++
	s.items = append(s.items, item)
	return item, nil
}

// Remove deletes the item with the given id. It reports whether an item was
// removed; removing an unknown id is a no-op.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}
