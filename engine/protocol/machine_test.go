package protocol

import (
	"bytes"
	"testing"
	"time"

	"github.com/rtg-systems/printer1022emu/engine/control"
	"github.com/rtg-systems/printer1022emu/engine/frame"
	"github.com/rtg-systems/printer1022emu/engine/ipc"
	"github.com/rtg-systems/printer1022emu/engine/payload"
	"github.com/rtg-systems/printer1022emu/engine/status"
	"github.com/rtg-systems/printer1022emu/engine/wire"
)

// fakeResponder records every RespondTo call so tests can assert on
// which client (if any) received an ACTION_SUCCESS/FAILURE.
type fakeResponder struct {
	calls []respondCall
}

type respondCall struct {
	clientID int32
	resp     ipc.Response
}

func (f *fakeResponder) RespondTo(clientID int32, resp ipc.Response) error {
	f.calls = append(f.calls, respondCall{clientID, resp})
	return nil
}

type harness struct {
	m    *Machine
	port *bytes.Buffer
	resp *fakeResponder
}

func newHarness(t *testing.T, active bool) *harness {
	t.Helper()
	port := &bytes.Buffer{}
	sink := wire.New(port)
	files := payload.New(payload.Desktop, t.TempDir(), t.TempDir())
	resp := &fakeResponder{}
	m := New(status.New(), frame.New(frame.DefaultCapacity), sink, files, control.New(), Options{Active: active}, resp)
	return &harness{m: m, port: port, resp: resp}
}

func (h *harness) feed(bs ...byte) {
	for _, b := range bs {
		h.m.Step(b)
	}
}

// Scenario 1 (spec §8.1): display + pause + printer poll in ACTIVE mode
// with no control bits set emits the idle status once and settles at
// SS_Pause.
func TestScenarioSteadyCycleIdle(t *testing.T) {
	h := newHarness(t, true)
	h.feed(0x91, 0x44, 0x98, 0x90, 0x44, 0x98)

	if h.m.State != SSPause {
		t.Fatalf("final state = %v, want SSPause", h.m.State)
	}
	if got := h.port.Bytes(); !bytes.Equal(got, []byte{0x44}) {
		t.Fatalf("wire output = %v, want [0x44]", got)
	}
}

// Scenario 2 (spec §8.2): a client-sourced REPORT_REQ pending at SS_Pause
// drives the report-start frame and, once the transaction's ;end\r
// marker is seen, notifies the originating client.
func TestScenarioClientReportRequestNotifiesOnCompletion(t *testing.T) {
	h := newHarness(t, true)
	h.m.State = SSPause
	h.m.Buf.ResetWith(0x98)
	h.m.Bus.Set(control.Report, control.Client{ReplyTo: 99})

	h.feed(0x90)
	if h.m.State != RPTStart {
		t.Fatalf("state after 0x90 = %v, want RPTStart", h.m.State)
	}
	if got := h.port.Bytes(); !bytes.Equal(got, []byte{0x44, 'R', 0x0D}) {
		t.Fatalf("wire output = %v, want [0x44 'R' 0x0D]", got)
	}

	// Open frame terminator, one short data record ending in ;end\r.
	h.feed(0x98) // RPTStart -> RPTData
	for _, b := range []byte(";end\r") {
		h.feed(b)
	}
	h.feed(0x91) // terminates RPTData, detects the ;end\r marker

	if len(h.resp.calls) != 1 {
		t.Fatalf("expected exactly one client notification, got %d", len(h.resp.calls))
	}
	call := h.resp.calls[0]
	if call.clientID != 99 {
		t.Fatalf("notified client = %d, want 99", call.clientID)
	}
	if call.resp.Type != ipc.ActionSuccess {
		t.Fatalf("response type = %v, want ActionSuccess", call.resp.Type)
	}
	if h.m.Bus.Test(control.Report) {
		t.Fatal("Report should be cleared from the bus after completion")
	}
}

// Scenario 3 (spec §8.3): an @R directive observed in SS_Pause display
// text sets REPORT_REQ from a Wire source; the report still starts, but
// no client is notified because MESSAGE_SRC has no client behind it.
func TestScenarioWireReportDirectiveNoClientNotify(t *testing.T) {
	h := newHarness(t, true)
	h.m.State = SSPause
	h.m.Buf.Reset()

	h.feed(0x40, 'R', 0x0D) // "@R\r"
	if !h.m.Bus.Test(control.Report) {
		t.Fatal("@R should have set control.Report on the bus")
	}

	h.feed(0x90)
	if h.m.State != RPTStart {
		t.Fatalf("state = %v, want RPTStart", h.m.State)
	}

	h.feed(0x98)
	for _, b := range []byte(";end\r") {
		h.feed(b)
	}
	h.feed(0x91)

	if len(h.resp.calls) != 0 {
		t.Fatalf("expected no client notification for a wire-sourced request, got %d", len(h.resp.calls))
	}
}

// Scenario 4 (spec §8.4): an @L directive seen mid log-stream sets
// LOGMODE_OFF_REQ; the next LOG_Display termination in ACTIVE mode
// clears the LOGMODE status bit, closes the log file, and emits the
// bare status byte before moving to SS_Printer.
func TestScenarioLogModeOffDirective(t *testing.T) {
	h := newHarness(t, true)
	h.m.Status.SetLogMode()
	if _, err := h.m.Files.OpenLog(); err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	h.m.State = LOGData
	h.m.Buf.Reset()

	h.feed(0x98, 0x40, 'L', 0x0D, 0x91) // "98 @L<CR>" terminated by display start
	if h.m.State != LOGDisplay {
		t.Fatalf("state after log data = %v, want LOGDisplay", h.m.State)
	}

	h.feed(0x98) // accumulate into the next display segment
	h.feed(0x90) // boundary-then-poll: consults the bus

	if h.m.Status.IsLogMode() {
		t.Fatal("LOGMODE status bit should be cleared")
	}
	if h.m.State != SSPrinter {
		t.Fatalf("state = %v, want SSPrinter", h.m.State)
	}
	if h.m.Files.LogPath() != "" {
		t.Fatal("log file should be closed")
	}
}

// Scenario 5 (spec §8.5): a wall-clock jump of 6s re-arms the snapshot
// gate; the next display-frame terminator truncates and rewrites
// readings.txt with the just-accumulated buffer.
func TestScenarioSnapshotOnClockJump(t *testing.T) {
	h := newHarness(t, true)
	clock := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	h.m.Files.SetClock(func() time.Time { return clock })
	h.m.Files.ArmSnapshotIfDue() // seeds the baseline; gate not armed yet

	clock = clock.Add(6 * time.Second)
	h.m.Files.ArmSnapshotIfDue() // 6s elapsed: arms the gate

	h.m.State = SSDisplay
	h.m.Buf.Reset()
	h.feed(0x91, 'X', 'Y')
	h.feed(0x98) // SSDisplay terminator: should consume the armed snapshot

	if h.m.Files.SnapshotArmed() {
		t.Fatal("the display terminator should have consumed the snapshot gate")
	}
}
