package unread

import (
	"sort"

	"github.com/matheus3301/zapweb/internal/model"
)

// SortMessages orders messages by ascending timestamp. The sort is
// stable: equal timestamps keep their arrival order.
func SortMessages(msgs []model.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp < msgs[j].Timestamp
	})
}

// Resolution is the unread bookkeeping for one conversation activation:
// the candidate set sized by the server's reported count, and the
// confirmed subset the user has actually viewed (or had viewed in a
// prior session). confirmed is always a subset of candidate.
type Resolution struct {
	candidates   []string // ascending timestamp order
	candidateSet map[string]struct{}
	confirmed    map[string]struct{}
}

// Resolve computes the candidate unread ids from the tail of a sorted
// message list, seeds the confirmed subset from the persisted read set,
// and returns the resulting resolution. unreadCount is clamped to the
// list length; messages without a usable id are never candidates.
func Resolve(msgs []model.Message, unreadCount int, persisted map[string]struct{}) *Resolution {
	res := &Resolution{
		candidateSet: make(map[string]struct{}),
		confirmed:    make(map[string]struct{}),
	}
	if unreadCount <= 0 || len(msgs) == 0 {
		return res
	}
	if unreadCount > len(msgs) {
		unreadCount = len(msgs)
	}

	for _, m := range msgs[len(msgs)-unreadCount:] {
		if m.ID == "" {
			continue
		}
		if _, seen := res.candidateSet[m.ID]; seen {
			continue
		}
		res.candidates = append(res.candidates, m.ID)
		res.candidateSet[m.ID] = struct{}{}
		if _, ok := persisted[m.ID]; ok {
			res.confirmed[m.ID] = struct{}{}
		}
	}
	return res
}

// Candidate reports whether id is in the candidate unread set.
func (r *Resolution) Candidate(id string) bool {
	_, ok := r.candidateSet[id]
	return ok
}

// Confirmed reports whether id has been confirmed read.
func (r *Resolution) Confirmed(id string) bool {
	_, ok := r.confirmed[id]
	return ok
}

// Confirm marks a candidate id as read. Returns true only the first
// time a candidate is confirmed; repeat observations and non-candidates
// are no-ops.
func (r *Resolution) Confirm(id string) bool {
	if !r.Candidate(id) || r.Confirmed(id) {
		return false
	}
	r.confirmed[id] = struct{}{}
	return true
}

// Anchor returns the first candidate, in ascending timestamp order, not
// yet confirmed read, i.e. the scroll target for a freshly opened
// conversation. Empty when everything is read.
func (r *Resolution) Anchor() string {
	for _, id := range r.candidates {
		if !r.Confirmed(id) {
			return id
		}
	}
	return ""
}

// Remaining returns the unread count still to be confirmed.
func (r *Resolution) Remaining() int {
	return len(r.candidates) - len(r.confirmed)
}

// CandidateCount returns the size of the candidate set.
func (r *Resolution) CandidateCount() int {
	return len(r.candidates)
}

// Observable returns the candidate ids still awaiting a view
// confirmation, in ascending timestamp order.
func (r *Resolution) Observable() []string {
	var ids []string
	for _, id := range r.candidates {
		if !r.Confirmed(id) {
			ids = append(ids, id)
		}
	}
	return ids
}
