package protocol

import "github.com/rtg-systems/printer1022emu/engine/control"

// stepHistory dispatches the record-by-record history transaction
// (spec.md §4.7 "History transaction").
func (m *Machine) stepHistory(b byte) {
	switch m.State {
	case HSTStart:
		if b != DelimBoundary {
			m.Buf.Append(b)
			return
		}
		if err := m.Files.OpenHistory(); err != nil {
			m.debugf("printer1022: open history file: %v", err)
		}
		m.hstFirst = true
		m.resetWith(b)
		m.State = HSTDisplay

	case HSTDisplay:
		if !(m.Buf.LastIs(DelimBoundary) && b == DelimPoll) {
			m.Buf.Append(b)
			return
		}
		if m.Opts.Active {
			status := m.Status.Get()
			if m.hstFirst {
				m.hstFirst = false
				m.sendEmulated([]byte{status, 'T', 0x0D})
				m.seedPair(b)
				m.appendBuf(status, 'T', 0x0D)
			} else {
				m.sendEmulated([]byte{status, 'H', 0x0D})
				m.seedPair(b)
				m.appendBuf(status, 'H', 0x0D)
			}
			m.State = HSTPrinterActive
		} else {
			m.seedPair(b)
			m.State = HSTPrinter
		}

	case HSTPrinter:
		if b != DelimBoundary {
			m.Buf.Append(b)
			return
		}
		if m.Buf.EndsWith([]byte{'H', 0x0D}) || m.Buf.EndsWith([]byte{'T', 0x0D}) {
			m.resetWith(b)
			m.State = HSTData
		} else {
			m.resetWith(b)
			m.State = HSTDisplay
		}

	case HSTPrinterActive:
		if b != DelimBoundary {
			m.Buf.Append(b)
			return
		}
		m.resetWith(b)
		m.State = HSTData

	case HSTData:
		if b != DelimDisplay {
			m.Buf.Append(b)
			return
		}
		if err := m.Files.WriteHistory(m.Buf.Bytes()); err != nil {
			m.debugf("printer1022: write history: %v", err)
		}
		if m.endsWithEndMarker() {
			path := m.Files.HistoryPath()
			if err := m.Files.CloseHistory(); err != nil {
				m.debugf("printer1022: close history file: %v", err)
			}
			m.notifyActionSuccess(control.History, "history "+path)
			m.resetWith(b)
			if m.Status.IsLogMode() {
				m.State = LOGDisplay
			} else {
				m.State = SSDisplay
			}
			return
		}
		m.seedPair(b)
		m.State = HSTDisplay
	}
}
