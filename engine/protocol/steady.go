package protocol

import "github.com/rtg-systems/printer1022emu/engine/control"

// atSign is the leading byte of an operator-injected `@R`/`@H`/`@L`
// directive embedded in display text.
const atSign = 0x40

var (
	atReport    = []byte{atSign, 'R', 0x0D}
	atHistory   = []byte{atSign, 'H', 0x0D}
	atLogOn     = []byte{atSign, 'L', 0x0D}
	reportTail  = []byte{'R', 0x0D}
	historyTail = []byte{'I', 0x0D}
	logTail     = []byte{'T', 0x0D}
)

// stepSteady dispatches SSUnknown, SSDisplay, SSPause and SSPrinter —
// the cyclic display/pause/printer-poll loop (spec.md §4.7 "Steady
// state").
func (m *Machine) stepSteady(b byte) {
	switch m.State {
	case SSUnknown:
		m.Buf.Append(b)
		if b == DelimDisplay {
			m.resetWith(b)
			m.State = SSDisplay
		}

	case SSDisplay:
		if b == DelimBoundary {
			m.snapshotIfArmed()
			m.resetWith(b)
			m.State = SSPause
			return
		}
		m.Buf.Append(b)

	case SSPause:
		m.stepSSPause(b)

	case SSPrinter:
		if b == DelimBoundary {
			m.debugf("printer1022: ss_printer -> ss_pause")
			m.resetWith(b)
			m.State = SSPause
			return
		}
		m.Buf.Append(b)
		if !m.Opts.Active {
			// Passive: watch for the real printer module starting a
			// report/history/log transaction so the listener follows.
			if m.Buf.EndsWith(reportTail) {
				m.State = RPTStart
			} else if m.Buf.EndsWith(historyTail) {
				m.State = HSTStart
			} else if m.Buf.EndsWith(logTail) {
				m.State = LOGStart
			}
		}
	}
}

func (m *Machine) stepSSPause(b byte) {
	if b != DelimPoll {
		m.Buf.Append(b)
		if m.Opts.Active {
			if m.Buf.EndsWith(atReport) {
				m.Bus.Set(control.Report, control.Wire{})
			} else if m.Buf.EndsWith(atHistory) {
				m.Bus.Set(control.History, control.Wire{})
			} else if m.Buf.EndsWith(atLogOn) {
				m.Bus.Set(control.LogModeOn, control.Wire{})
			}
		}
		return
	}

	if !m.Opts.Active {
		m.resetWith(b)
		m.State = SSPrinter
		return
	}

	status := m.Status.Get()
	switch {
	case m.Bus.Test(control.Report):
		m.seedPair(b)
		m.appendBuf(status, 'R', 0x0D)
		m.sendEmulated([]byte{status, 'R', 0x0D})
		m.State = RPTStart

	case m.Bus.Test(control.History):
		m.seedPair(b)
		m.appendBuf(status, 'I', 0x0D)
		m.sendEmulated([]byte{status, 'I', 0x0D})
		m.State = HSTStart

	case m.Bus.Test(control.LogModeOn):
		m.Status.SetLogMode()
		status = m.Status.Get()
		m.notifyActionSuccess(control.LogModeOn, "logmode 1")
		m.seedPair(b)
		m.appendBuf(status, 'T', 0x0D)
		m.sendEmulated([]byte{status, 'T', 0x0D})
		m.State = LOGStart

	default:
		m.sendEmulated([]byte{status})
		m.resetWith(b)
		m.State = SSPrinter
	}
}
