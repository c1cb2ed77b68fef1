package events

import "container/list"

// DefaultDedupeCapacity is the number of recent idempotency keys a
// LogEventSink remembers.
const DefaultDedupeCapacity = 10_000

// keySet is a size-bounded set of idempotency keys. The least recently seen
// key is evicted once the capacity is exceeded. Not safe for concurrent use.
type keySet struct {
	capacity int
	order    *list.List
	index    map[string]*list.Element
}

func newKeySet(capacity int) *keySet {
	if capacity <= 0 {
		capacity = DefaultDedupeCapacity
	}
	return &keySet{capacity: capacity, order: list.New(), index: make(map[string]*list.Element)}
}

// add records key and reports whether it was already present.
func (s *keySet) add(key string) bool {
	if e, ok := s.index[key]; ok {
		s.order.MoveToFront(e)
		return true
	}
	s.index[key] = s.order.PushFront(key)
	if s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(string))
	}
	return false
}

func (s *keySet) len() int { return s.order.Len() }
