package payload

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWriter(t *testing.T, clock *time.Time) *Writer {
	t.Helper()
	dir := t.TempDir()
	w := New(Desktop, dir, dir)
	w.SetClock(func() time.Time { return *clock })
	return w
}

func TestSnapshotGateSeedsBaselineThenArmsAfterFiveSeconds(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := newTestWriter(t, &clock)

	w.ArmSnapshotIfDue()
	if w.SnapshotArmed() {
		t.Fatal("first call should only seed the baseline, not arm the gate")
	}

	clock = clock.Add(2 * time.Second)
	w.ArmSnapshotIfDue()
	if w.SnapshotArmed() {
		t.Fatal("2s elapsed should not arm the gate")
	}

	clock = clock.Add(4 * time.Second)
	w.ArmSnapshotIfDue()
	if !w.SnapshotArmed() {
		t.Fatal("6s total elapsed should arm the gate")
	}
	if err := w.SnapshotReadings([]byte("frame-1")); err != nil {
		t.Fatalf("SnapshotReadings: %v", err)
	}
	if w.SnapshotArmed() {
		t.Fatal("SnapshotReadings should consume the armed flag")
	}

	got, err := os.ReadFile(filepath.Join(w.ramDir, "readings.txt"))
	if err != nil {
		t.Fatalf("read readings.txt: %v", err)
	}
	if string(got) != "frame-1" {
		t.Fatalf("readings.txt = %q, want the snapshot just taken", got)
	}
}

func TestSnapshotGateArmsOnBackwardsClockJump(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 10, 0, time.UTC)
	w := newTestWriter(t, &clock)
	w.ArmSnapshotIfDue() // seeds the baseline at t=10s; gate not armed yet

	clock = clock.Add(-2 * time.Second)
	w.ArmSnapshotIfDue()
	if !w.SnapshotArmed() {
		t.Fatal("a >1s backwards jump should arm the gate")
	}
}

func TestReportLifecycle(t *testing.T) {
	clock := time.Now()
	w := newTestWriter(t, &clock)

	if err := w.OpenReport(); err != nil {
		t.Fatalf("OpenReport: %v", err)
	}
	if w.ReportPath() == "" {
		t.Fatal("ReportPath should be non-empty while open")
	}
	if err := w.WriteReport([]byte("a report body;end\r")); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if err := w.CloseReport(); err != nil {
		t.Fatalf("CloseReport: %v", err)
	}
	if w.ReportPath() != "" {
		t.Fatal("ReportPath should be empty once closed")
	}
	// Idempotent close.
	if err := w.CloseReport(); err != nil {
		t.Fatalf("second CloseReport should be a no-op: %v", err)
	}
}
