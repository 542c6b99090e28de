package tagstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tags.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestReadLaterToggle(t *testing.T) {
	store := openTestStore(t)

	on, err := store.ToggleReadLater("2401.00001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !on {
		t.Error("expected toggle on")
	}

	in, _ := store.InReadLater("2401.00001")
	if !in {
		t.Error("expected identity in read-later set")
	}

	on, _ = store.ToggleReadLater("2401.00001")
	if on {
		t.Error("expected toggle off")
	}
	in, _ = store.InReadLater("2401.00001")
	if in {
		t.Error("expected identity removed")
	}
}

func TestReadLaterInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	store.AddReadLater("b")
	store.AddReadLater("a")
	store.AddReadLater("c")
	store.AddReadLater("a") // duplicate, no-op

	identities, err := store.ReadLater()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"b", "a", "c"}
	if len(identities) != len(want) {
		t.Fatalf("expected %d identities, got %d", len(want), len(identities))
	}
	for i := range want {
		if identities[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], identities[i])
		}
	}
}

func TestAddTopicDuplicate(t *testing.T) {
	store := openTestStore(t)
	if err := store.AddTopic("agents"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.AddTopic("agents"); err == nil {
		t.Error("expected error adding duplicate topic")
	}
	if err := store.AddTopic(""); err == nil {
		t.Error("expected error adding empty topic name")
	}
}

func TestStarRequiresTopic(t *testing.T) {
	store := openTestStore(t)
	if err := store.Star("nonexistent", "2401.00001"); err == nil {
		t.Error("expected error starring into missing topic")
	}
}

func TestToggleStar(t *testing.T) {
	store := openTestStore(t)
	store.AddTopic("agents")

	on, err := store.ToggleStar("agents", "2401.00001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !on {
		t.Error("expected star on")
	}

	stars, _ := store.StarsFor("agents")
	if len(stars) != 1 || stars[0] != "2401.00001" {
		t.Errorf("expected one star, got %v", stars)
	}

	on, _ = store.ToggleStar("agents", "2401.00001")
	if on {
		t.Error("expected star off")
	}
	stars, _ = store.StarsFor("agents")
	if len(stars) != 0 {
		t.Errorf("expected no stars, got %v", stars)
	}
}

func TestRenameTopicCarriesStars(t *testing.T) {
	store := openTestStore(t)
	store.AddTopic("first")
	store.AddTopic("second")
	store.Star("first", "2401.00001")
	store.Star("first", "2401.00002")

	if err := store.RenameTopic("first", "renamed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	topics, _ := store.Topics()
	if len(topics) != 2 || topics[0] != "renamed" || topics[1] != "second" {
		t.Errorf("expected position preserved, got %v", topics)
	}

	stars, _ := store.StarsFor("renamed")
	if len(stars) != 2 {
		t.Errorf("expected 2 stars under new name, got %d", len(stars))
	}
	stars, _ = store.StarsFor("first")
	if len(stars) != 0 {
		t.Error("expected no stars under old name")
	}
}

func TestRenameTopicErrors(t *testing.T) {
	store := openTestStore(t)
	store.AddTopic("a")
	store.AddTopic("b")

	if err := store.RenameTopic("missing", "x"); err == nil {
		t.Error("expected error renaming missing topic")
	}
	if err := store.RenameTopic("a", "b"); err == nil {
		t.Error("expected error renaming onto existing topic")
	}
	// Aborted renames leave state intact.
	topics, _ := store.Topics()
	if len(topics) != 2 || topics[0] != "a" || topics[1] != "b" {
		t.Errorf("expected topics unchanged, got %v", topics)
	}
}

func TestDeleteTopicDiscardsStars(t *testing.T) {
	store := openTestStore(t)
	store.AddTopic("doomed")
	store.Star("doomed", "2401.00001")
	store.AddReadLater("2401.00001")

	if err := store.DeleteTopic("doomed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	topics, _ := store.Topics()
	if len(topics) != 0 {
		t.Errorf("expected no topics, got %v", topics)
	}
	// Unrelated tags survive.
	in, _ := store.InReadLater("2401.00001")
	if !in {
		t.Error("expected read-later entry to survive topic deletion")
	}

	if err := store.DeleteTopic("doomed"); err == nil {
		t.Error("expected error deleting missing topic")
	}
}

func TestExportImportReadLaterRoundTrip(t *testing.T) {
	store := openTestStore(t)
	store.AddReadLater("2401.00001")
	store.AddReadLater("2401.00002")

	data, err := store.ExportReadLater()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fresh := openTestStore(t)
	if err := fresh.Import(data, Dest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	identities, _ := fresh.ReadLater()
	if len(identities) != 2 || identities[0] != "2401.00001" || identities[1] != "2401.00002" {
		t.Errorf("round trip mismatch: %v", identities)
	}
}

func TestImportBareArrayIntoTopic(t *testing.T) {
	store := openTestStore(t)
	if err := store.Import([]byte(`["2401.00001","2401.00002"]`), Dest{Topic: "imported"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	topics, _ := store.Topics()
	if len(topics) != 1 || topics[0] != "imported" {
		t.Errorf("expected topic auto-created, got %v", topics)
	}
	stars, _ := store.StarsFor("imported")
	if len(stars) != 2 {
		t.Errorf("expected 2 stars, got %d", len(stars))
	}
}

func TestImportPayloadIsAdditive(t *testing.T) {
	store := openTestStore(t)
	store.AddReadLater("existing")
	store.AddTopic("kept")
	store.Star("kept", "2401.00001")

	payload := `{
  "readLater": ["incoming"],
  "topics": ["new-topic"],
  "starsByTopic": {"new-topic": ["2401.00009"], "unlisted": ["2401.00010"]}
}`
	if err := store.Import([]byte(payload), Dest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	identities, _ := store.ReadLater()
	if len(identities) != 2 {
		t.Errorf("expected union of read-later sets, got %v", identities)
	}

	topics, _ := store.Topics()
	if len(topics) != 3 || topics[0] != "kept" {
		t.Errorf("expected existing order preserved with appends, got %v", topics)
	}

	stars, _ := store.StarsFor("kept")
	if len(stars) != 1 {
		t.Error("expected unrelated stars untouched")
	}
	stars, _ = store.StarsFor("unlisted")
	if len(stars) != 1 {
		t.Error("expected stars under unlisted key imported with topic created")
	}
}

func TestImportRejectsBadShapes(t *testing.T) {
	store := openTestStore(t)
	store.AddReadLater("existing")

	if err := store.Import([]byte(`{not json`), Dest{}); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if err := store.Import([]byte(`{"something":"else"}`), Dest{}); err == nil {
		t.Error("expected error for unrecognized shape")
	}

	// No state change on rejected imports.
	identities, _ := store.ReadLater()
	if len(identities) != 1 {
		t.Errorf("expected store unchanged, got %v", identities)
	}
}

func TestReplacePayload(t *testing.T) {
	store := openTestStore(t)
	store.AddReadLater("old")
	store.AddTopic("old-topic")

	err := store.Replace(Payload{
		ReadLater:    []string{"new"},
		Topics:       []string{"t1", "t2"},
		StarsByTopic: map[string][]string{"t1": {"2401.00001"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	identities, _ := store.ReadLater()
	if len(identities) != 1 || identities[0] != "new" {
		t.Errorf("expected replaced read-later, got %v", identities)
	}
	topics, _ := store.Topics()
	if len(topics) != 2 || topics[0] != "t1" {
		t.Errorf("expected replaced topics, got %v", topics)
	}
	stars, _ := store.StarsFor("t1")
	if len(stars) != 1 {
		t.Errorf("expected replaced stars, got %v", stars)
	}
}

func TestExportAllIncludesEmptyTopics(t *testing.T) {
	store := openTestStore(t)
	store.AddTopic("empty")

	payload, err := store.ExportAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, ok := payload.StarsByTopic["empty"]
	if !ok {
		t.Fatal("expected empty topic present in starsByTopic")
	}
	if len(set) != 0 {
		t.Errorf("expected empty star set, got %v", set)
	}
}

func TestClientIDStable(t *testing.T) {
	store := openTestStore(t)
	first, err := store.ClientID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == "" {
		t.Fatal("expected non-empty client id")
	}
	second, _ := store.ClientID()
	if first != second {
		t.Errorf("expected stable client id, got %q then %q", first, second)
	}
}
