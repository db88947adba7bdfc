package event

// Filter is a predicate over an event's category, priority, and payload.
// Zero-value fields match everything, so Filter{} matches every event.
type Filter struct {
	// Categories restricts matches to these categories. Empty matches all.
	Categories []Category
	// MinPriority restricts matches to events at or above this priority.
	// Nil matches all priorities.
	MinPriority *Priority
	// PayloadEquals requires every listed key to be present in the payload
	// with exactly the given value.
	PayloadEquals map[string]any
	// PayloadHas requires the listed keys to be present, any value.
	PayloadHas []string
}

// Matches reports whether the event passes the filter.
func (f Filter) Matches(e Event) bool {
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if c == e.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.MinPriority != nil && e.Priority > *f.MinPriority {
		return false
	}

	for k, want := range f.PayloadEquals {
		got, ok := e.Payload[k]
		if !ok || got != want {
			return false
		}
	}

	for _, k := range f.PayloadHas {
		if _, ok := e.Payload[k]; !ok {
			return false
		}
	}

	return true
}

// CategoryFilter matches events in any of the given categories.
func CategoryFilter(categories ...Category) Filter {
	return Filter{Categories: categories}
}

// ReasonFilter matches system events carrying one of the given reasons.
func ReasonFilter(reasons ...string) []Filter {
	filters := make([]Filter, 0, len(reasons))
	for _, r := range reasons {
		filters = append(filters, Filter{
			Categories:    []Category{CategorySystem},
			PayloadEquals: map[string]any{KeyReason: r},
		})
	}
	return filters
}
