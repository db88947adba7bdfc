package event

// Handler receives a delivered event. A returned error is recorded by the bus
// but never propagated to the publisher.
type Handler func(Event) error

// Subscriber pairs an identity with an ordered filter list and a delivery
// callback. The bus keys registration on ID; it holds the registration entry
// only, never an owning reference to anything behind the handler.
type Subscriber struct {
	// ID uniquely identifies the subscriber for register/unregister.
	ID string
	// Filters is the ordered filter list. An empty list matches everything.
	Filters []Filter
	// MatchAll requires every filter to match instead of the default
	// any-filter-matches behavior.
	MatchAll bool
	// Handler is invoked once per matching publish.
	Handler Handler
}

// Matches reports whether the subscriber wants the event.
func (s Subscriber) Matches(e Event) bool {
	if len(s.Filters) == 0 {
		return true
	}
	if s.MatchAll {
		for _, f := range s.Filters {
			if !f.Matches(e) {
				return false
			}
		}
		return true
	}
	for _, f := range s.Filters {
		if f.Matches(e) {
			return true
		}
	}
	return false
}
