package control

import "testing"

func TestFirstSourceWins(t *testing.T) {
	b := New()
	b.Set(Report, Wire{})
	b.Set(Report, Client{ReplyTo: 42})

	src, ok := b.SourceOf(Report)
	if !ok {
		t.Fatal("Report should be pending")
	}
	if _, isWire := src.(Wire); !isWire {
		t.Fatalf("first Set should win; got %#v", src)
	}
}

func TestIsClientRequest(t *testing.T) {
	b := New()
	b.Set(History, Client{ReplyTo: 7})

	id, ok := b.IsClientRequest(History)
	if !ok || id != 7 {
		t.Fatalf("IsClientRequest(History) = (%d, %v), want (7, true)", id, ok)
	}

	if _, ok := b.IsClientRequest(Report); ok {
		t.Fatal("Report was never set")
	}
}

func TestClear(t *testing.T) {
	b := New()
	b.Set(LogModeOn, Wire{})
	if !b.Test(LogModeOn) {
		t.Fatal("LogModeOn should be pending after Set")
	}
	b.Clear(LogModeOn)
	if b.Test(LogModeOn) {
		t.Fatal("Clear should remove the pending entry")
	}
}
