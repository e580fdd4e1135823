package batch

import (
	"strings"
	"sync"
)

// IDQueue holds Nota ids to process, skipping ids it has already seen.
type IDQueue struct {
	mu    sync.Mutex
	queue []queueItem
	seen  map[string]bool
}

type queueItem struct {
	ID    string
	Index int
}

// NewIDQueue creates an empty queue.
func NewIDQueue() *IDQueue {
	return &IDQueue{
		queue: make([]queueItem, 0),
		seen:  make(map[string]bool),
	}
}

// Add queues id unless it is blank or already seen. The index records the
// order in which ids were accepted.
func (q *IDQueue) Add(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	id = normalizeID(id)
	if id == "" || q.seen[id] {
		return false
	}

	q.seen[id] = true
	q.queue = append(q.queue, queueItem{ID: id, Index: len(q.seen) - 1})
	return true
}

// Pop removes and returns the next id.
func (q *IDQueue) Pop() (string, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.queue) == 0 {
		return "", 0, false
	}

	item := q.queue[0]
	q.queue = q.queue[1:]
	return item.ID, item.Index, true
}

// Len returns the number of queued ids.
func (q *IDQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Seen returns the number of distinct ids accepted so far.
func (q *IDQueue) Seen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.seen)
}

// normalizeID trims whitespace and a trailing slash copied from a URL.
func normalizeID(id string) string {
	return strings.TrimSuffix(strings.TrimSpace(id), "/")
}
