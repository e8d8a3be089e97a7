package status

import "testing"

func TestNewIsPoweredOnAndReady(t *testing.T) {
	r := New()
	if got := r.Get(); got != PRWON|Ready {
		t.Fatalf("New() = %#02x, want PRWON|Ready (%#02x)", got, PRWON|Ready)
	}
}

func TestLogModeRoundTrip(t *testing.T) {
	r := New()
	if r.IsLogMode() {
		t.Fatal("fresh register should not report log mode")
	}
	r.SetLogMode()
	if !r.IsLogMode() {
		t.Fatal("SetLogMode did not set the bit")
	}
	if r.Get()&PRWON == 0 {
		t.Fatal("SetLogMode must not disturb unrelated bits")
	}
	r.ClearLogMode()
	if r.IsLogMode() {
		t.Fatal("ClearLogMode did not clear the bit")
	}
}
