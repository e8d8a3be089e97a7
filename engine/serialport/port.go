// Package serialport wraps github.com/daedaluz/goserial with the one
// fixed configuration this emulator ever uses: 9600 8N1 raw mode, with
// the kernel's low-latency flag toggled by the driver's -s option.
package serialport

import (
	"fmt"

	serial "github.com/daedaluz/goserial"
)

// Port is the minimal surface the driver loop needs; both *Port and
// engine/replay's capture reader satisfy it, so the driver is agnostic
// to whether it's reading a real tty or a replayed capture.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Open opens name at 9600 8N1 raw mode. lowLatency mirrors the driver's
// default (-s disables it, matching spec.md's CLI surface).
func Open(name string, lowLatency bool) (*serial.Port, error) {
	port, err := serial.Open(name, serial.NewOptions())
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", name, err)
	}
	if err := configure(port, lowLatency); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

func configure(port *serial.Port, lowLatency bool) error {
	if err := port.MakeRaw(); err != nil {
		return fmt.Errorf("serialport: make raw: %w", err)
	}
	attrs, err := port.GetAttr()
	if err != nil {
		return fmt.Errorf("serialport: get attr: %w", err)
	}
	attrs.SetSpeed(serial.B9600)
	attrs.Cflag |= serial.CS8 | serial.CREAD | serial.CLOCAL
	if err := port.SetAttr(serial.TCSANOW, attrs); err != nil {
		return fmt.Errorf("serialport: set attr: %w", err)
	}
	return setLowLatency(port, lowLatency)
}

// setLowLatency toggles ASYNC_LOW_LATENCY without touching any other bit
// in the kernel's serial_struct flags, per SPEC_FULL.md §9's testable
// property that the round-trip is side-effect free on unrelated bits.
func setLowLatency(port *serial.Port, enable bool) error {
	s, err := port.GetSerial()
	if err != nil {
		return fmt.Errorf("serialport: get serial struct: %w", err)
	}
	if enable {
		s.Flags |= serial.AsyncLowLatency
	} else {
		s.Flags &^= serial.AsyncLowLatency
	}
	if err := port.SetSerial(s); err != nil {
		return fmt.Errorf("serialport: set serial struct: %w", err)
	}
	return nil
}
