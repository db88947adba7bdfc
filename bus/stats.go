package bus

import (
	"sync"

	"github.com/skillsenselab/healthcore/event"
)

// Stats is a point-in-time snapshot of bus counters.
type Stats struct {
	// PublishedByCategory counts publishes per event category.
	PublishedByCategory map[event.Category]uint64 `json:"published_by_category"`
	// Delivered counts successful subscriber callback invocations.
	Delivered uint64 `json:"delivered"`
	// Failures counts callbacks that errored or panicked.
	Failures uint64 `json:"failures"`
	// Dropped counts events dropped from full async queues.
	Dropped uint64 `json:"dropped"`
}

type stats struct {
	mu                  sync.Mutex
	publishedByCategory map[event.Category]uint64
	delivered           uint64
	failures            uint64
	dropped             uint64
}

func (s *stats) recordPublish(c event.Category) {
	s.mu.Lock()
	s.publishedByCategory[c]++
	s.mu.Unlock()
}

func (s *stats) recordDelivery() {
	s.mu.Lock()
	s.delivered++
	s.mu.Unlock()
}

func (s *stats) recordFailure() {
	s.mu.Lock()
	s.failures++
	s.mu.Unlock()
}

func (s *stats) recordDrop() {
	s.mu.Lock()
	s.dropped++
	s.mu.Unlock()
}

// Stats returns a copy of the current counters.
func (b *Bus) Stats() Stats {
	b.stats.mu.Lock()
	defer b.stats.mu.Unlock()

	byCategory := make(map[event.Category]uint64, len(b.stats.publishedByCategory))
	for k, v := range b.stats.publishedByCategory {
		byCategory[k] = v
	}
	return Stats{
		PublishedByCategory: byCategory,
		Delivered:           b.stats.delivered,
		Failures:            b.stats.failures,
		Dropped:             b.stats.dropped,
	}
}
