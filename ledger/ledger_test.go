package ledger

import (
	"errors"
	"testing"
	"time"
)

func TestRecordAdmissionAndLookup(t *testing.T) {
	l := New()
	now := time.Now()

	if l.HasAdmitted("SUN-ABC-0001") {
		t.Fatal("fresh ledger must not report admissions")
	}

	l.RecordAdmission("SUN-ABC-0001", now)

	if !l.HasAdmitted("SUN-ABC-0001") {
		t.Fatal("expected admission to be recorded")
	}
	if !l.HasAdmitted("  sun-abc-0001 ") {
		t.Fatal("expected lookup to normalize the ticket id")
	}
	if l.Size() != 1 {
		t.Fatalf("expected size 1, got %d", l.Size())
	}
}

func TestRecordAdmissionKeepsFirstTimestamp(t *testing.T) {
	l := New()
	first := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	l.RecordAdmission("sun-abc-0001", first)
	l.RecordAdmission("SUN-ABC-0001", second)

	records := l.Records()
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if !records[0].AdmittedAt.Equal(first) {
		t.Fatalf("expected first admission time to stick, got %v", records[0].AdmittedAt)
	}
}

func TestRecordAdmissionIgnoresEmptyID(t *testing.T) {
	l := New()
	l.RecordAdmission("   ", time.Now())

	if l.Size() != 0 {
		t.Fatalf("expected empty id to be ignored, size %d", l.Size())
	}
}

func TestRemoveRollsBackAdmission(t *testing.T) {
	l := New()
	l.RecordAdmission("SUN-ABC-0001", time.Now())
	l.Remove("sun-abc-0001")

	if l.HasAdmitted("SUN-ABC-0001") {
		t.Fatal("expected removal to make the id eligible again")
	}
	if l.Size() != 0 {
		t.Fatalf("expected size 0, got %d", l.Size())
	}
}

func TestRecordsSortedByTicketID(t *testing.T) {
	l := New()
	now := time.Now()
	l.RecordAdmission("SUN-ZZZ-0003", now)
	l.RecordAdmission("SUN-AAA-0001", now)
	l.RecordAdmission("SUN-MMM-0002", now)

	records := l.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	want := []string{"SUN-AAA-0001", "SUN-MMM-0002", "SUN-ZZZ-0003"}
	for i, id := range want {
		if records[i].TicketID != id {
			t.Fatalf("records not sorted: got %q at %d, want %q", records[i].TicketID, i, id)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := New()
	at := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	l.RecordAdmission("SUN-ABC-0001", at)
	l.RecordAdmission("SUN-XYZ-0002", at.Add(time.Minute))

	data, err := l.EncodeSnapshot()
	if err != nil {
		t.Fatalf("EncodeSnapshot failed: %v", err)
	}

	restored := New()
	if err := restored.RestoreSnapshot(data); err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}
	if restored.Size() != 2 {
		t.Fatalf("expected 2 restored admissions, got %d", restored.Size())
	}
	if !restored.HasAdmitted("sun-abc-0001") {
		t.Fatal("expected restored admission to block re-entry")
	}

	records := restored.Records()
	if !records[0].AdmittedAt.Equal(at) {
		t.Fatalf("expected admission time to survive the round trip, got %v", records[0].AdmittedAt)
	}
}

func TestRestoreSnapshotRejectsGarbage(t *testing.T) {
	l := New()
	if err := l.RestoreSnapshot([]byte("garbage")); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("expected ErrSnapshotCorrupt, got %v", err)
	}
}

func TestClearEmptiesLedger(t *testing.T) {
	l := New()
	l.RecordAdmission("SUN-ABC-0001", time.Now())
	l.Clear()

	if l.Size() != 0 {
		t.Fatalf("expected size 0 after Clear, got %d", l.Size())
	}
}
