// Package wire implements the emulator's reply path back onto the RS-485
// bus: the small 1- or 3-byte frames the state machine emits on a
// printer-ready edge.
package wire

import (
	"fmt"
	"io"
)

// Command bytes that may follow a status byte in a 3-byte reply.
const (
	CmdReport  = 'R' // 0x52, begin report
	CmdHistory = 'I' // 0x49, begin history
	CmdFirst   = 'T' // 0x54, first history pull / begin logmode
	CmdNext    = 'H' // 0x48, subsequent history pull
	CmdLog     = 'L' // 0x4C, pull next log record

	CR = 0x0D
)

// ErrShortWrite is returned when fewer bytes reached the wire than were
// handed to Send. The caller (the protocol state machine) logs it under
// -d and carries on; the next delimiter resynchronises.
var ErrShortWrite = fmt.Errorf("wire: short write")

// Sink writes emulator replies onto the serial port, optionally teeing a
// copy to a capture writer (set with -c).
type Sink struct {
	port    io.Writer
	capture io.Writer // nil unless -c was given
}

// New wraps port as the wire sink. port may be a no-op writer in passive
// mode, where the emulator must never talk.
func New(port io.Writer) *Sink {
	return &Sink{port: port}
}

// SetCapture attaches a capture writer that receives a copy of everything
// sent, mirroring what a bus analyzer would see.
func (s *Sink) SetCapture(w io.Writer) {
	s.capture = w
}

// Send writes a 1-3 byte reply frame to the wire. A short write is fatal
// to the in-flight transaction; the caller should not retry it, since the
// 1022 has already moved its own state forward.
func (s *Sink) Send(b []byte) error {
	n, err := s.port.Write(b)
	if err != nil {
		return fmt.Errorf("wire: send %d bytes: %w", len(b), err)
	}
	if n != len(b) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(b))
	}
	if s.capture != nil {
		s.capture.Write(b)
	}
	return nil
}

// Idle returns the 1-byte idle reply.
func Idle(status byte) []byte {
	return []byte{status}
}

// Directive returns the 3-byte [status, cmd, CR] reply.
func Directive(status byte, cmd byte) []byte {
	return []byte{status, cmd, CR}
}
