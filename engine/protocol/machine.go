package protocol

import (
	"log"
	"time"

	"github.com/rtg-systems/printer1022emu/engine/control"
	"github.com/rtg-systems/printer1022emu/engine/frame"
	"github.com/rtg-systems/printer1022emu/engine/ipc"
	"github.com/rtg-systems/printer1022emu/engine/payload"
	"github.com/rtg-systems/printer1022emu/engine/status"
	"github.com/rtg-systems/printer1022emu/engine/wire"
)

// Responder is the subset of *ipc.Server the machine needs to reply to
// a client that raised the request currently completing. Narrowed to an
// interface so the machine can be driven in tests without a live queue.
type Responder interface {
	RespondTo(clientID int32, resp ipc.Response) error
}

// Options mirrors the part of spec.md's DATA MODEL option set the
// machine reads (UNIT_TEST is consumed by the driver/replay layers, not
// here).
type Options struct {
	Active bool // ACTIVE_MODE: emulator drives the bus. false = PASSIVE (listen only).
	Debug  bool // DEBUG_DUMP: log state transitions.
}

// Machine is the single-threaded context threaded through every
// transition function by exclusive reference — the "global mutable
// state → one context struct" decision from spec.md §9 DESIGN NOTES.
type Machine struct {
	State State

	Status *status.Register
	Buf    *frame.Accumulator
	Sink   *wire.Sink
	Files  *payload.Writer
	Bus    *control.Bus

	Opts Options
	Resp Responder

	hstFirst bool // HST_Start set this; cleared on first HST_Printer_Active transition
	now      func() time.Time
}

// New constructs a Machine starting at SSUnknown, the same entry point
// as the original's power-up state.
func New(st *status.Register, buf *frame.Accumulator, sink *wire.Sink, files *payload.Writer, bus *control.Bus, opts Options, resp Responder) *Machine {
	return &Machine{
		State:  SSUnknown,
		Status: st,
		Buf:    buf,
		Sink:   sink,
		Files:  files,
		Bus:    bus,
		Opts:   opts,
		Resp:   resp,
		now:    time.Now,
	}
}

// Step feeds one inbound byte through the dispatcher for the current
// state. It never returns an error: malformed input is tolerated by
// design (spec.md §7, "unexpected byte ... silently accumulate").
func (m *Machine) Step(b byte) {
	switch m.State {
	case SSUnknown, SSDisplay, SSPause, SSPrinter:
		m.stepSteady(b)
	case RPTStart, RPTData, RPTDisplay, RPTPrinter:
		m.stepReport(b)
	case HSTStart, HSTDisplay, HSTPrinter, HSTPrinterActive, HSTData:
		m.stepHistory(b)
	case LOGStart, LOGData, LOGDisplay, LOGPrinter, LOGPrinterActive:
		m.stepLogMode(b)
	}
}

// resetWith clears the accumulator and seeds it with b — the original's
// pervasive `buffer_len = 0; buffer[buffer_len++] = data[i];` idiom: the
// delimiter that triggered a transition becomes the first byte of the
// next frame rather than being discarded.
func (m *Machine) resetWith(b byte) {
	m.Buf.ResetWith(b)
}

func (m *Machine) debugf(format string, args ...interface{}) {
	if m.Opts.Debug {
		log.Printf(format, args...)
	}
}

// snapshotIfArmed is the "recompute once per inbound buffer, consume on
// the next display terminator" gate from spec.md §4.7's last section.
// ArmSnapshotIfDue is called once per read buffer by the driver loop
// (engine.go), not here; this just consumes it when a display frame
// closes, writing the accumulator verbatim to readings.txt.
func (m *Machine) snapshotIfArmed() {
	if !m.Files.SnapshotArmed() {
		return
	}
	if err := m.Files.SnapshotReadings(m.Buf.Bytes()); err != nil {
		m.debugf("printer1022: snapshot write: %v", err)
	}
}

// endsWithEndMarker reports whether the buffer's last 5 bytes are the
// literal ";end\r" that terminates a report/history data record.
func (m *Machine) endsWithEndMarker() bool {
	return m.Buf.EndsWith(endMarker)
}

// notifyActionSuccess emits ACTION_SUCCESS to the client that raised
// kind, if any, and clears the control-bus entry for it either way.
// Mirrors the original's `if (*p_control & MESSAGE_SRC) { ...; clear }`
// pairing, but MESSAGE_SRC is now implicit in the Source tag instead of
// a separately-tracked bit (spec.md §9 DESIGN NOTES).
func (m *Machine) notifyActionSuccess(kind control.Kind, body string) {
	if clientID, ok := m.Bus.IsClientRequest(kind); ok {
		if err := m.Resp.RespondTo(clientID, ipc.Response{Type: ipc.ActionSuccess, Body: body}); err != nil {
			m.debugf("printer1022: notify client of %s completion: %v", kind, err)
		}
	}
	m.Bus.Clear(kind)
}

// seedPair reseeds the accumulator as [0x98, b], the idiom used whenever
// a transition is keyed off a boundary-then-delimiter pair (e.g.
// 0x98-then-0x90) and the new state needs the pair itself at the head of
// its buffer to do its own lookback later.
func (m *Machine) seedPair(b byte) {
	m.Buf.Reset()
	m.Buf.Append(DelimBoundary)
	m.Buf.Append(b)
}

// appendBuf appends extra bytes (typically the emulator's own outbound
// frame) onto whatever resetWith/seedPair just seeded, so the buffer
// mirrors what was just written to the wire the same way the original's
// buffer does. Only active-mode paths call it, and the states they move
// to (SS_Printer, RPT_Start, RPT_Printer, HST_Start, HST_Printer_Active,
// LOG_Start, LOG_Printer_Active) do not look back at these bytes.
func (m *Machine) appendBuf(bs ...byte) {
	for _, b := range bs {
		m.Buf.Append(b)
	}
}

// sendEmulated writes bytes to the wire through the sink. A send error
// is logged under Debug and otherwise ignored. It does not touch the
// accumulator; callers mirror the same bytes into it with appendBuf.
func (m *Machine) sendEmulated(b []byte) {
	if err := m.Sink.Send(b); err != nil {
		m.debugf("printer1022: wire send: %v", err)
	}
}
