package protocol

import "github.com/rtg-systems/printer1022emu/engine/control"

// stepReport dispatches the multi-frame report transaction: a start
// frame, then alternating Data/Display frames until a data frame ends
// in the literal ";end\r" (spec.md §4.7 "Report transaction").
func (m *Machine) stepReport(b byte) {
	switch m.State {
	case RPTStart:
		if b != DelimBoundary {
			m.Buf.Append(b)
			return
		}
		if err := m.Files.OpenReport(); err != nil {
			m.debugf("printer1022: open report file: %v", err)
		}
		m.resetWith(b)
		m.State = RPTData

	case RPTData:
		if b != DelimDisplay {
			m.Buf.Append(b)
			return
		}
		if err := m.Files.WriteReport(m.Buf.Bytes()); err != nil {
			m.debugf("printer1022: write report: %v", err)
		}
		if m.endsWithEndMarker() {
			path := m.Files.ReportPath()
			if err := m.Files.CloseReport(); err != nil {
				m.debugf("printer1022: close report file: %v", err)
			}
			m.notifyActionSuccess(control.Report, "report "+path)
			m.resetWith(b)
			if m.Status.IsLogMode() {
				m.State = LOGDisplay
			} else {
				m.State = SSDisplay
			}
			return
		}
		m.resetWith(b)
		m.State = RPTDisplay

	case RPTDisplay:
		if !(m.Buf.LastIs(DelimBoundary) && b == DelimPoll) {
			m.Buf.Append(b)
			return
		}
		m.snapshotIfArmed()
		if m.Opts.Active {
			status := m.Status.Get()
			m.sendEmulated([]byte{status})
			m.seedPair(b)
			m.appendBuf(status)
		} else {
			m.seedPair(b)
		}
		m.State = RPTPrinter

	case RPTPrinter:
		if b != DelimBoundary {
			m.Buf.Append(b)
			return
		}
		m.resetWith(b)
		m.State = RPTData
	}
}
