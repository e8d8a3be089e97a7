package protocol

import (
	"github.com/rtg-systems/printer1022emu/engine/control"
	"github.com/rtg-systems/printer1022emu/engine/status"
)

var (
	lRequestTail = []byte{'L', 0x0D}
	rRequestTail = []byte{'R', 0x0D}
	iRequestTail = []byte{'I', 0x0D}
)

// stepLogMode dispatches the continuous log-record stream with
// interleaved display frames and graceful exit (spec.md §4.7 "Log
// mode").
func (m *Machine) stepLogMode(b byte) {
	switch m.State {
	case LOGStart:
		if b != DelimBoundary {
			m.Buf.Append(b)
			return
		}
		if _, err := m.Files.OpenLog(); err != nil {
			m.debugf("printer1022: open log file: %v", err)
		}
		m.Status.SetLogMode()
		m.resetWith(b)
		m.State = LOGData

	case LOGData:
		if b != DelimDisplay {
			m.Buf.Append(b)
			return
		}
		if m.Opts.Active && m.Buf.Len() >= 3 && m.Buf.At(1) == atSign {
			switch m.Buf.At(2) {
			case 'L':
				m.Bus.Set(control.LogModeOff, control.Wire{})
			case 'R':
				m.Bus.Set(control.Report, control.Wire{})
			case 'H':
				m.Bus.Set(control.History, control.Wire{})
			default:
				m.debugf("printer1022: log data: invalid @%c directive", m.Buf.At(2))
			}
		}
		if m.Buf.Len() < 2 || m.Buf.At(1) != ';' {
			data := m.Buf.Bytes()
			if len(data) > 0 && data[0] == DelimBoundary {
				data = data[1:]
			}
			if err := m.Files.WriteLog(data); err != nil {
				m.debugf("printer1022: write log: %v", err)
			}
		}
		m.resetWith(b)
		m.State = LOGDisplay

	case LOGDisplay:
		switch {
		case m.Buf.LastIs(DelimBoundary) && b == DelimPoll:
			m.snapshotIfArmed()
			if m.Opts.Active {
				m.stepLogDisplayActive(b)
			} else {
				m.seedPair(b)
				m.State = LOGPrinter
			}

		case m.Buf.LastIs(DelimBoundary) && b == DelimDisplay:
			m.seedPair(b)
			m.State = LOGDisplay

		case m.Buf.LastIs(DelimBoundary) && b == ';':
			m.seedPair(b)
			m.State = LOGData

		default:
			m.Buf.Append(b)
		}

	case LOGPrinter:
		if b != DelimBoundary {
			m.Buf.Append(b)
			if m.Buf.EndsWith(rRequestTail) {
				m.State = RPTStart
			} else if m.Buf.EndsWith(iRequestTail) {
				m.State = HSTStart
			}
			return
		}
		if m.Buf.Len() >= 3 && m.Buf.At(2)&status.LogMode == 0 {
			if err := m.Files.CloseLog(); err != nil {
				m.debugf("printer1022: close log file: %v", err)
			}
			m.Status.ClearLogMode()
			m.resetWith(b)
			m.State = SSDisplay
		} else {
			m.resetWith(b)
			m.State = LOGDisplay
		}

	case LOGPrinterActive:
		if b != DelimBoundary {
			m.Buf.Append(b)
			return
		}
		m.resetWith(b)
		m.State = LOGData
	}
}

func (m *Machine) stepLogDisplayActive(b byte) {
	switch {
	case m.Bus.Test(control.LogModeOff):
		m.Status.ClearLogMode()
		path := m.Files.LogPath()
		m.notifyActionSuccess(control.LogModeOff, "logmode 0 "+path)
		status := m.Status.Get()
		m.sendEmulated([]byte{status})
		if err := m.Files.CloseLog(); err != nil {
			m.debugf("printer1022: close log file: %v", err)
		}
		m.seedPair(b)
		m.appendBuf(status)
		m.State = SSPrinter

	case m.Bus.Test(control.Report):
		status := m.Status.Get()
		m.sendEmulated([]byte{status, 'R', 0x0D})
		m.seedPair(b)
		m.appendBuf(status, 'R', 0x0D)
		m.State = RPTStart

	case m.Bus.Test(control.History):
		status := m.Status.Get()
		m.sendEmulated([]byte{status, 'I', 0x0D})
		m.seedPair(b)
		m.appendBuf(status, 'I', 0x0D)
		m.State = HSTStart

	default:
		status := m.Status.Get()
		m.sendEmulated([]byte{status, 'L', 0x0D})
		m.seedPair(b)
		m.appendBuf(status, 'L', 0x0D)
		m.State = LOGPrinterActive
	}
}
