package statestore

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileIsEmptyState(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state.json"))
	st, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.LastEndpoint != "" || st.LastDeviceName != "" || len(st.History) != 0 {
		t.Errorf("missing file should load as empty state: %+v", st)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state.json"))
	want := &State{
		LastEndpoint:   "http://192.168.2.125:8070",
		LastDeviceName: "POS80",
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.LastEndpoint != want.LastEndpoint || got.LastDeviceName != want.LastDeviceName {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestRecordPrintAppendsAndUpdatesLastUsed(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state.json"))

	err := store.RecordPrint("http://backend:8070", "POS80", HistoryEntry{
		OrderName: "Order 00001-001-0001",
		PrintedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordPrint: %v", err)
	}
	err = store.RecordPrint("", "", HistoryEntry{
		OrderName: "Order 00001-001-0002",
		PrintedAt: time.Now(),
		Reprint:   true,
	})
	if err != nil {
		t.Fatalf("RecordPrint: %v", err)
	}

	st, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.LastEndpoint != "http://backend:8070" || st.LastDeviceName != "POS80" {
		t.Errorf("empty endpoint/device must not clobber last-used values: %+v", st)
	}
	if len(st.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(st.History))
	}
	if !st.History[1].Reprint {
		t.Error("second entry should be marked reprint")
	}
}

func TestHistoryIsBounded(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state.json"))
	for i := 0; i < maxHistoryEntries+10; i++ {
		if err := store.RecordPrint("", "", HistoryEntry{OrderName: "x"}); err != nil {
			t.Fatalf("RecordPrint: %v", err)
		}
	}
	st, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.History) > maxHistoryEntries {
		t.Errorf("history length = %d, want <= %d", len(st.History), maxHistoryEntries)
	}
}
