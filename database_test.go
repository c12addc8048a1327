package main

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestJournal(t *testing.T, keep int) *Journal {
	t.Helper()
	journal, err := NewJournal("", keep)
	if err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}
	t.Cleanup(func() { journal.Close() })
	return journal
}

func testCycle(trigger Trigger, success bool) PollCycle {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cycle := PollCycle{
		Trigger:    string(trigger),
		StartedAt:  start,
		FinishedAt: start.Add(250 * time.Millisecond),
		DurationMs: 250,
		Success:    success,
	}
	if success {
		cycle.ItemCount = 7
		cycle.FeedUpdatedAt = "2025-01-01T00:00:00Z"
	} else {
		cycle.ErrorKind = "network_failure"
		cycle.ErrorMessage = "Could not reach the stock feed. Check your connection and try again."
	}
	return cycle
}

func TestJournalRecentCycles(t *testing.T) {
	journal := newTestJournal(t, 0)

	for _, trigger := range []Trigger{TriggerStartup, TriggerTimer, TriggerManual} {
		if err := journal.RecordCycle(testCycle(trigger, true)); err != nil {
			t.Fatalf("RecordCycle() error = %v", err)
		}
	}

	cycles, err := journal.RecentCycles(2)
	if err != nil {
		t.Fatalf("RecentCycles() error = %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("cycles = %d, want 2", len(cycles))
	}
	if cycles[0].Trigger != "manual" || cycles[1].Trigger != "timer" {
		t.Errorf("order = %s, %s; want newest first", cycles[0].Trigger, cycles[1].Trigger)
	}
	if cycles[0].ItemCount != 7 || cycles[0].CreatedAt.IsZero() {
		t.Errorf("cycle = %+v", cycles[0])
	}
}

func TestJournalPrunesOldest(t *testing.T) {
	journal := newTestJournal(t, 3)

	for i := 0; i < 5; i++ {
		if err := journal.RecordCycle(testCycle(TriggerTimer, true)); err != nil {
			t.Fatalf("RecordCycle() error = %v", err)
		}
	}

	cycles, err := journal.RecentCycles(10)
	if err != nil {
		t.Fatalf("RecentCycles() error = %v", err)
	}
	if len(cycles) != 3 {
		t.Fatalf("retained %d cycles, want 3", len(cycles))
	}
	if cycles[0].ID != 5 || cycles[2].ID != 3 {
		t.Errorf("retained ids %d..%d, want 5..3", cycles[0].ID, cycles[2].ID)
	}

	removed, err := journal.Prune(1)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
}

func TestJournalStats(t *testing.T) {
	journal := newTestJournal(t, 0)

	stats, err := journal.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 0 || stats.LastSuccess != nil {
		t.Errorf("empty stats = %+v", stats)
	}

	journal.RecordCycle(testCycle(TriggerStartup, true))
	journal.RecordCycle(testCycle(TriggerTimer, false))
	journal.RecordCycle(testCycle(TriggerManual, false))

	stats, err = journal.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 3 || stats.Failures != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastSuccess == nil || stats.LastSuccess.Trigger != "startup" {
		t.Errorf("last success = %+v", stats.LastSuccess)
	}
}

func TestJournalOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	journal, err := NewJournal(path, 0)
	if err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}
	journal.RecordCycle(testCycle(TriggerManual, true))
	journal.Close()

	reopened, err := NewJournal(path, 0)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	cycles, err := reopened.RecentCycles(5)
	if err != nil || len(cycles) != 1 {
		t.Fatalf("cycles = %v, err = %v", cycles, err)
	}
}
