package builder

import (
	"errors"
	"fmt"

	"github.com/radiusdt/vector-insights/internal/models"
)

var (
	ErrEmptyLabel     = errors.New("segment label is required")
	ErrDuplicateLabel = errors.New("segment already queued")
)

// Queue is the ordered set of segments selected for a build, keyed by label.
// A Queue is not safe for concurrent use.
type Queue struct {
	items []models.QueuedItem
	index map[string]int
}

// NewQueue creates a queue holding items. Duplicate labels are rejected.
func NewQueue(items ...models.QueuedItem) (*Queue, error) {
	q := &Queue{}
	for _, it := range items {
		if err := q.Add(it); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// Add appends an item. Labels must be unique within the queue.
func (q *Queue) Add(item models.QueuedItem) error {
	if item.Label == "" {
		return ErrEmptyLabel
	}
	if q.index == nil {
		q.index = make(map[string]int)
	}
	if _, ok := q.index[item.Label]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLabel, item.Label)
	}
	q.index[item.Label] = len(q.items)
	q.items = append(q.items, item)
	return nil
}

// Remove drops the item with label and reports whether it was queued.
func (q *Queue) Remove(label string) bool {
	i, ok := q.index[label]
	if !ok {
		return false
	}
	q.items = append(q.items[:i], q.items[i+1:]...)
	delete(q.index, label)
	for j := i; j < len(q.items); j++ {
		q.index[q.items[j].Label] = j
	}
	return true
}

// Toggle removes the item if its label is queued and adds it otherwise.
// It reports whether the item is queued afterwards.
func (q *Queue) Toggle(item models.QueuedItem) (bool, error) {
	if q.Remove(item.Label) {
		return false, nil
	}
	if err := q.Add(item); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether label is queued.
func (q *Queue) Contains(label string) bool {
	_, ok := q.index[label]
	return ok
}

// Items returns the queued items in insertion order.
func (q *Queue) Items() []models.QueuedItem {
	return append([]models.QueuedItem(nil), q.items...)
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	return len(q.items)
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.items = nil
	q.index = nil
}
