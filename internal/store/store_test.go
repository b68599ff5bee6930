package store

import (
	"path/filepath"
	"testing"

	"github.com/matheus3301/zapweb/internal/model"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReadMarksNamespaces(t *testing.T) {
	db := testDB(t)

	if err := db.AddRead("a@c.us", "m1"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddStatusRead("a@c.us", "s1"); err != nil {
		t.Fatal(err)
	}

	reads, err := db.ReadSet("a@c.us")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reads["m1"]; !ok || len(reads) != 1 {
		t.Errorf("ReadSet = %v, want {m1}", reads)
	}

	// The status namespace shares the scope id but not the data.
	statusReads, err := db.StatusReadSet("a@c.us")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := statusReads["s1"]; !ok || len(statusReads) != 1 {
		t.Errorf("StatusReadSet = %v, want {s1}", statusReads)
	}
	if _, ok := statusReads["m1"]; ok {
		t.Error("chat read mark leaked into status namespace")
	}
}

func TestAddReadIdempotent(t *testing.T) {
	db := testDB(t)

	for range 3 {
		if err := db.AddRead("a@c.us", "m1"); err != nil {
			t.Fatal(err)
		}
	}
	reads, err := db.ReadSet("a@c.us")
	if err != nil {
		t.Fatal(err)
	}
	if len(reads) != 1 {
		t.Errorf("got %d marks, want 1", len(reads))
	}
}

func TestAddReadIgnoresEmptyIDs(t *testing.T) {
	db := testDB(t)

	if err := db.AddRead("", "m1"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddRead("a@c.us", ""); err != nil {
		t.Fatal(err)
	}
	reads, _ := db.ReadSet("a@c.us")
	if len(reads) != 0 {
		t.Errorf("got %d marks, want 0", len(reads))
	}
}

func TestReadSetMissingScopeIsEmpty(t *testing.T) {
	db := testDB(t)
	reads, err := db.ReadSet("never-seen@c.us")
	if err != nil {
		t.Fatal(err)
	}
	if len(reads) != 0 {
		t.Errorf("got %v, want empty set", reads)
	}
}

func TestUpsertConversationAndList(t *testing.T) {
	db := testDB(t)

	older := &model.Conversation{ID: "a@c.us", Name: "Alice", Timestamp: 100, UnreadCount: 2}
	newer := &model.Conversation{ID: "b@c.us", Name: "Bob", Timestamp: 200}
	if err := db.UpsertConversation(older); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertConversation(newer); err != nil {
		t.Fatal(err)
	}

	convs, err := db.ListConversations(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 || convs[0].ID != "b@c.us" {
		t.Errorf("ListConversations = %+v, want b@c.us first", convs)
	}

	older.UnreadCount = 0
	if err := db.UpsertConversation(older); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetConversation("a@c.us")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.UnreadCount != 0 {
		t.Errorf("GetConversation after upsert = %+v", got)
	}
}

func TestListMessagesOrderAndIdempotence(t *testing.T) {
	db := testDB(t)

	msgs := []model.Message{
		{ID: "a", ConversationID: "c@c.us", Timestamp: 5},
		{ID: "b", ConversationID: "c@c.us", Timestamp: 3},
		{ID: "c", ConversationID: "c@c.us", Timestamp: 9},
		{ID: "d", ConversationID: "c@c.us", Timestamp: 3},
	}
	for i := range msgs {
		if err := db.UpsertMessage(&msgs[i]); err != nil {
			t.Fatal(err)
		}
	}
	// Duplicate upsert must not add a row.
	if err := db.UpsertMessage(&msgs[0]); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListMessages("c@c.us", 10)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	// Equal timestamps keep insertion order: b before d.
	want := []string{"b", "d", "a", "c"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}
