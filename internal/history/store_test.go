// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger", "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)

	runs := []Run{
		{Date: "2025-10-13", OutputPath: "a.pdf", PagesTotal: 20, PagesFetched: 20, Bytes: 1000, State: "done"},
		{Date: "2025-10-14", OutputPath: "b.pdf", PagesTotal: 20, PagesFetched: 18, Bytes: 900, State: "done (partial)"},
		{Date: "2025-10-15", OutputPath: "c.pdf", PagesTotal: 24, PagesFetched: 24, Bytes: 1200, Compressed: true, State: "done"},
	}
	for _, r := range runs {
		if err := s.Record(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d runs, want 3", len(got))
	}

	// Most recent first.
	if got[0].Date != "2025-10-15" || got[2].Date != "2025-10-13" {
		t.Errorf("unexpected order: %s, %s, %s", got[0].Date, got[1].Date, got[2].Date)
	}
	if !got[0].Compressed {
		t.Error("compressed flag lost")
	}
	if got[1].PagesFetched != 18 {
		t.Errorf("PagesFetched = %d, want 18", got[1].PagesFetched)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated on read")
	}
}

func TestRecent_Limit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.Record(Run{Date: "2025-10-15", OutputPath: "x.pdf", State: "done"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("Recent(2) returned %d runs", len(got))
	}
}

func TestRecent_EmptyLedger(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty ledger, got %d runs", len(got))
	}
}

func TestRecord_PreservesExplicitTimestamp(t *testing.T) {
	s := openTestStore(t)

	ts := time.Date(2025, 10, 15, 8, 30, 0, 0, time.UTC)
	if err := s.Record(Run{Date: "2025-10-15", OutputPath: "x.pdf", State: "done", CreatedAt: ts}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if !got[0].CreatedAt.Equal(ts) {
		t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, ts)
	}
}
