package stories

import (
	"sort"
	"sync"
	"time"

	"github.com/matheus3301/zapweb/internal/bus"
	"github.com/matheus3301/zapweb/internal/model"
	"go.uber.org/zap"
)

// DefaultDwell is how long a non-video status stays on screen before
// auto-advancing.
const DefaultDwell = 5 * time.Second

// ReadStore persists seen status keys per contact.
type ReadStore interface {
	StatusReadSet(contactID string) (map[string]struct{}, error)
	AddStatusRead(contactID, key string) error
}

// Viewer is the status/story state machine: a closed contact list, or
// one contact's group open at some index. Non-video items auto-advance
// after a fixed dwell; videos advance only on their playback-ended
// signal. Every displayed item is marked seen immediately and
// persistently; advancing past the last item exits back to the list.
type Viewer struct {
	mu     sync.Mutex
	reads  ReadStore
	bus    *bus.Bus
	logger *zap.Logger
	dwell  time.Duration

	groups   []model.ContactStatusGroup
	readSets map[string]map[string]struct{}

	selected string // contact id, "" = list
	index    int
	timer    *time.Timer
	timerGen uint64
}

// NewViewer creates a viewer in the closed-list state. A zero dwell
// selects DefaultDwell.
func NewViewer(reads ReadStore, b *bus.Bus, logger *zap.Logger, dwell time.Duration) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	return &Viewer{
		reads:    reads,
		bus:      b,
		logger:   logger,
		dwell:    dwell,
		readSets: make(map[string]map[string]struct{}),
	}
}

// Load replaces the grouped statuses from a fresh backend fetch.
// Duplicates (same unique key) collapse to one entry; within a group
// statuses are sorted ascending by timestamp; groups are ordered by
// most recent activity.
func (v *Viewer) Load(statuses []model.Status) {
	byContact := make(map[string]*model.ContactStatusGroup)
	var order []string
	seen := make(map[string]struct{})

	for _, s := range statuses {
		if _, dup := seen[s.Key]; dup {
			continue
		}
		seen[s.Key] = struct{}{}

		g, ok := byContact[s.ContactID]
		if !ok {
			g = &model.ContactStatusGroup{
				ContactID:   s.ContactID,
				ContactName: s.ContactName,
				AvatarURL:   s.AvatarURL,
			}
			byContact[s.ContactID] = g
			order = append(order, s.ContactID)
		}
		if g.ContactName == "" {
			g.ContactName = s.ContactName
		}
		if g.AvatarURL == "" {
			g.AvatarURL = s.AvatarURL
		}
		g.Statuses = append(g.Statuses, s)
		if s.Timestamp > g.LastTimestamp {
			g.LastTimestamp = s.Timestamp
		}
	}

	groups := make([]model.ContactStatusGroup, 0, len(order))
	for _, contactID := range order {
		g := byContact[contactID]
		sort.SliceStable(g.Statuses, func(i, j int) bool {
			return g.Statuses[i].Timestamp < g.Statuses[j].Timestamp
		})
		groups = append(groups, *g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].LastTimestamp > groups[j].LastTimestamp
	})

	v.mu.Lock()
	v.groups = groups
	v.mu.Unlock()
	v.publish()
}

// Select opens a contact's group at its first unread status, or at 0
// when everything is already seen.
func (v *Viewer) Select(contactID string) {
	v.mu.Lock()
	g := v.groupLocked(contactID)
	if g == nil {
		v.mu.Unlock()
		return
	}
	v.selected = contactID
	v.setIndexLocked(v.firstUnreadIndexLocked(g))
	v.mu.Unlock()
	v.publish()
}

// Next advances to the next status; past the last it exits to the list.
func (v *Viewer) Next() {
	v.mu.Lock()
	v.nextLocked()
	v.mu.Unlock()
	v.publish()
}

// Prev steps back one status. No-op at index 0.
func (v *Viewer) Prev() {
	v.mu.Lock()
	if g := v.currentGroupLocked(); g != nil && v.index > 0 {
		v.setIndexLocked(v.index - 1)
	}
	v.mu.Unlock()
	v.publish()
}

// VideoEnded advances past the current item if it is a video. Videos
// have no dwell timer; this is their only auto-advance signal.
func (v *Viewer) VideoEnded() {
	v.mu.Lock()
	if s, ok := v.currentLocked(); ok && s.Kind == "video" {
		v.nextLocked()
	}
	v.mu.Unlock()
	v.publish()
}

// CloseGroup exits the open group back to the contact list.
func (v *Viewer) CloseGroup() {
	v.mu.Lock()
	v.closeGroupLocked()
	v.mu.Unlock()
	v.publish()
}

// Groups returns a snapshot of the grouped statuses.
func (v *Viewer) Groups() []model.ContactStatusGroup {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.ContactStatusGroup, len(v.groups))
	copy(out, v.groups)
	return out
}

// Current returns the displayed status, or ok=false in the list state.
func (v *Viewer) Current() (model.Status, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentLocked()
}

// Selected returns the open contact id ("" in the list state) and index.
func (v *Viewer) Selected() (string, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected, v.index
}

// UnreadCount returns how many of a contact's statuses are unseen.
func (v *Viewer) UnreadCount(contactID string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	g := v.groupLocked(contactID)
	if g == nil {
		return 0
	}
	set := v.readSetLocked(contactID)
	n := 0
	for _, s := range g.Statuses {
		if _, ok := set[s.Key]; !ok {
			n++
		}
	}
	return n
}

func (v *Viewer) nextLocked() {
	g := v.currentGroupLocked()
	if g == nil {
		return
	}
	if v.index < len(g.Statuses)-1 {
		v.setIndexLocked(v.index + 1)
		return
	}
	// Done with this contact; back to the list, never wrap.
	v.closeGroupLocked()
}

// setIndexLocked moves the cursor, marks the newly displayed item seen,
// and re-arms the dwell timer. Every index change funnels through here.
func (v *Viewer) setIndexLocked(i int) {
	v.index = i
	v.markCurrentLocked()
	v.armTimerLocked()
}

func (v *Viewer) closeGroupLocked() {
	v.selected = ""
	v.index = 0
	v.stopTimerLocked()
}

func (v *Viewer) markCurrentLocked() {
	s, ok := v.currentLocked()
	if !ok {
		return
	}
	set := v.readSetLocked(s.ContactID)
	if _, seen := set[s.Key]; seen {
		return
	}
	set[s.Key] = struct{}{}
	if err := v.reads.AddStatusRead(s.ContactID, s.Key); err != nil {
		v.logger.Warn("persist status read failed",
			zap.String("contact", s.ContactID), zap.String("status", s.Key), zap.Error(err))
	}
}

func (v *Viewer) armTimerLocked() {
	v.stopTimerLocked()

	s, ok := v.currentLocked()
	if !ok || s.Kind == "video" {
		return
	}

	v.timerGen++
	gen := v.timerGen
	contactID := v.selected
	index := v.index
	v.timer = time.AfterFunc(v.dwell, func() {
		v.mu.Lock()
		// A stale timer must never advance after navigation.
		if gen != v.timerGen || v.selected != contactID || v.index != index {
			v.mu.Unlock()
			return
		}
		v.nextLocked()
		v.mu.Unlock()
		v.publish()
	})
}

func (v *Viewer) stopTimerLocked() {
	v.timerGen++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

func (v *Viewer) currentLocked() (model.Status, bool) {
	g := v.currentGroupLocked()
	if g == nil || v.index < 0 || v.index >= len(g.Statuses) {
		return model.Status{}, false
	}
	return g.Statuses[v.index], true
}

func (v *Viewer) currentGroupLocked() *model.ContactStatusGroup {
	if v.selected == "" {
		return nil
	}
	return v.groupLocked(v.selected)
}

func (v *Viewer) groupLocked(contactID string) *model.ContactStatusGroup {
	for i := range v.groups {
		if v.groups[i].ContactID == contactID {
			return &v.groups[i]
		}
	}
	return nil
}

func (v *Viewer) readSetLocked(contactID string) map[string]struct{} {
	if set, ok := v.readSets[contactID]; ok {
		return set
	}
	set, err := v.reads.StatusReadSet(contactID)
	if err != nil {
		// Degrade to "nothing seen" rather than failing the viewer.
		v.logger.Warn("status read store unavailable", zap.Error(err))
		set = nil
	}
	if set == nil {
		set = make(map[string]struct{})
	}
	v.readSets[contactID] = set
	return set
}

func (v *Viewer) firstUnreadIndexLocked(g *model.ContactStatusGroup) int {
	set := v.readSetLocked(g.ContactID)
	for i, s := range g.Statuses {
		if _, ok := set[s.Key]; !ok {
			return i
		}
	}
	return 0
}

func (v *Viewer) publish() {
	if v.bus == nil {
		return
	}
	v.bus.Publish(bus.Event{Kind: "stories.updated", Timestamp: time.Now()})
}
