package unread

import "sync"

// ViewedThreshold is the fraction of a message that must be visible
// before it counts as viewed.
const ViewedThreshold = 0.72

type span struct {
	top    int
	bottom int // exclusive
}

// Registry maps rendered message regions (line spans in the message
// pane buffer) to message ids and reports threshold crossings to its
// consumer. Observation for an id stops after its first report; a
// re-render resets the whole set.
type Registry struct {
	mu       sync.Mutex
	spans    map[string]span
	onViewed func(id string)
}

// NewRegistry creates a registry reporting to onViewed.
func NewRegistry(onViewed func(id string)) *Registry {
	return &Registry{
		spans:    make(map[string]span),
		onViewed: onViewed,
	}
}

// SetSpan registers or updates the rendered line span for a message id.
func (r *Registry) SetSpan(id string, top, height int) {
	if id == "" || height <= 0 {
		return
	}
	r.mu.Lock()
	r.spans[id] = span{top: top, bottom: top + height}
	r.mu.Unlock()
}

// Reset drops all observed spans.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.spans = make(map[string]span)
	r.mu.Unlock()
}

// ReportWindow feeds the currently visible line window [offset,
// offset+height) to the registry. Every observed span whose visible
// fraction meets ViewedThreshold is reported once and dropped.
func (r *Registry) ReportWindow(offset, height int) {
	if height <= 0 {
		return
	}
	windowTop := offset
	windowBottom := offset + height

	r.mu.Lock()
	var viewed []string
	for id, s := range r.spans {
		visibleTop := max(s.top, windowTop)
		visibleBottom := min(s.bottom, windowBottom)
		if visibleBottom <= visibleTop {
			continue
		}
		fraction := float64(visibleBottom-visibleTop) / float64(s.bottom-s.top)
		if fraction >= ViewedThreshold {
			viewed = append(viewed, id)
			delete(r.spans, id)
		}
	}
	r.mu.Unlock()

	// Callback outside the lock; consumers re-enter the registry.
	for _, id := range viewed {
		r.onViewed(id)
	}
}
