package unread

import (
	"testing"

	"github.com/matheus3301/zapweb/internal/model"
)

func msgList(pairs ...any) []model.Message {
	var msgs []model.Message
	for i := 0; i < len(pairs); i += 2 {
		msgs = append(msgs, model.Message{
			ID:        pairs[i].(string),
			Timestamp: int64(pairs[i+1].(int)),
		})
	}
	return msgs
}

func TestSortMessagesStable(t *testing.T) {
	msgs := msgList("a", 5, "b", 3, "c", 9, "d", 3)
	SortMessages(msgs)

	var ids []string
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	// b and d share timestamp 3; b arrived first and must stay first.
	want := []string{"b", "d", "a", "c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", ids, want)
		}
	}
}

func TestResolveCandidateTail(t *testing.T) {
	msgs := msgList("m1", 1, "m2", 2, "m3", 3, "m4", 4, "m5", 5)

	res := Resolve(msgs, 2, nil)
	if res.CandidateCount() != 2 {
		t.Fatalf("candidate count = %d, want 2", res.CandidateCount())
	}
	if !res.Candidate("m4") || !res.Candidate("m5") {
		t.Error("candidates must be the last 2 messages {m4, m5}")
	}
	if res.Candidate("m3") {
		t.Error("m3 must not be a candidate")
	}
	if res.Anchor() != "m4" {
		t.Errorf("anchor = %q, want m4", res.Anchor())
	}
	if res.Remaining() != 2 {
		t.Errorf("remaining = %d, want 2", res.Remaining())
	}
}

func TestResolveSeedsConfirmedFromPersisted(t *testing.T) {
	msgs := msgList("m1", 1, "m2", 2, "m3", 3, "m4", 4, "m5", 5)
	persisted := map[string]struct{}{"m4": {}, "m1": {}}

	res := Resolve(msgs, 2, persisted)
	if !res.Confirmed("m4") {
		t.Error("m4 was read in a prior session and must start confirmed")
	}
	if res.Confirmed("m1") {
		t.Error("m1 is not a candidate; confirmed must stay a subset of candidate")
	}
	if res.Anchor() != "m5" {
		t.Errorf("anchor = %q, want m5", res.Anchor())
	}
	if res.Remaining() != 1 {
		t.Errorf("remaining = %d, want 1", res.Remaining())
	}
}

func TestResolveClampsToListLength(t *testing.T) {
	msgs := msgList("m1", 1, "m2", 2)
	res := Resolve(msgs, 10, nil)
	if res.CandidateCount() != 2 {
		t.Errorf("candidate count = %d, want clamped 2", res.CandidateCount())
	}
}

func TestResolveZeroAndEmpty(t *testing.T) {
	if res := Resolve(msgList("m1", 1), 0, nil); res.CandidateCount() != 0 || res.Anchor() != "" {
		t.Error("zero unread count must yield an empty candidate set and no anchor")
	}
	if res := Resolve(nil, 3, nil); res.CandidateCount() != 0 || res.Remaining() != 0 {
		t.Error("empty message list must yield no candidates")
	}
}

func TestResolveFiltersMalformedIDs(t *testing.T) {
	msgs := []model.Message{
		{ID: "m1", Timestamp: 1},
		{ID: "", Timestamp: 2},
		{ID: "m3", Timestamp: 3},
	}
	res := Resolve(msgs, 3, nil)
	if res.CandidateCount() != 2 {
		t.Errorf("candidate count = %d, want 2 (missing id filtered)", res.CandidateCount())
	}
	if res.Candidate("") {
		t.Error("empty id must never be a candidate")
	}
}

func TestConfirmIdempotent(t *testing.T) {
	res := Resolve(msgList("m1", 1, "m2", 2), 2, nil)

	if !res.Confirm("m1") {
		t.Fatal("first confirmation must succeed")
	}
	after := res.Remaining()
	if res.Confirm("m1") {
		t.Error("second confirmation of the same id must be a no-op")
	}
	if res.Remaining() != after {
		t.Errorf("remaining changed on repeat observation: %d -> %d", after, res.Remaining())
	}
	if res.Confirm("not-a-candidate") {
		t.Error("non-candidate must not be confirmable")
	}
}

func TestConfirmedSubsetInvariant(t *testing.T) {
	msgs := msgList("m1", 1, "m2", 2, "m3", 3)
	res := Resolve(msgs, 2, map[string]struct{}{"m2": {}, "m3": {}})

	res.Confirm("m2")
	res.Confirm("m3")
	res.Confirm("bogus")

	if res.CandidateCount() > len(msgs) {
		t.Error("candidate set larger than message list")
	}
	for id := range res.confirmed {
		if !res.Candidate(id) {
			t.Errorf("confirmed id %q is not a candidate", id)
		}
	}
}
