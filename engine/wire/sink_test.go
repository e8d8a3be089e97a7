package wire

import (
	"bytes"
	"errors"
	"testing"
)

type fixedWriter struct {
	wrote int
	max   int
}

func (f *fixedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if f.max >= 0 && n > f.max {
		n = f.max
	}
	f.wrote += n
	return n, nil
}

func TestSendHappyPathTeesCapture(t *testing.T) {
	port := &fixedWriter{max: -1}
	var capture bytes.Buffer
	s := New(port)
	s.SetCapture(&capture)

	frame := Directive(0x44, CmdReport)
	if err := s.Send(frame); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if capture.Len() != len(frame) {
		t.Fatalf("capture got %d bytes, want %d", capture.Len(), len(frame))
	}
}

func TestSendShortWrite(t *testing.T) {
	port := &fixedWriter{max: 1}
	s := New(port)
	err := s.Send(Directive(0x44, CmdHistory))
	if !errors.Is(err, ErrShortWrite) {
		t.Fatalf("Send error = %v, want ErrShortWrite", err)
	}
}

func TestIdleAndDirective(t *testing.T) {
	if got := Idle(0x44); !bytes.Equal(got, []byte{0x44}) {
		t.Fatalf("Idle(0x44) = %v", got)
	}
	if got := Directive(0x44, CmdLog); !bytes.Equal(got, []byte{0x44, 'L', CR}) {
		t.Fatalf("Directive(0x44, CmdLog) = %v", got)
	}
}
