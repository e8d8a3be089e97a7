// Package protocol implements the 1022 RS-485 state machine: the
// per-byte dispatcher that classifies inbound wire bytes against the
// three delimiters (0x90, 0x91, 0x98) and drives the status register,
// frame accumulator, wire sink, payload writers and control bus from
// (state, byte, context). Each step mutates the Machine context in place
// and performs its side effects directly; no effects list is returned.
//
// Split into one file per named flow (steady/report/history/log), the
// way the teacher splits per-device behavior into one file per device
// (core_engine/devices/pic.go, rtc.go, keyboard.go) rather than one
// giant switch.
package protocol

// State is one vertex of the 18-state machine.
type State int

const (
	SSUnknown State = iota
	SSDisplay
	SSPause
	SSPrinter

	RPTStart
	RPTData
	RPTDisplay
	RPTPrinter

	HSTStart
	HSTDisplay
	HSTPrinter
	HSTPrinterActive
	HSTData

	LOGStart
	LOGData
	LOGDisplay
	LOGPrinter
	LOGPrinterActive
)

func (s State) String() string {
	switch s {
	case SSUnknown:
		return "SS_Unknown"
	case SSDisplay:
		return "SS_Display"
	case SSPause:
		return "SS_Pause"
	case SSPrinter:
		return "SS_Printer"
	case RPTStart:
		return "RPT_Start"
	case RPTData:
		return "RPT_Data"
	case RPTDisplay:
		return "RPT_Display"
	case RPTPrinter:
		return "RPT_Printer"
	case HSTStart:
		return "HST_Start"
	case HSTDisplay:
		return "HST_Display"
	case HSTPrinter:
		return "HST_Printer"
	case HSTPrinterActive:
		return "HST_Printer_Active"
	case HSTData:
		return "HST_Data"
	case LOGStart:
		return "LOG_Start"
	case LOGData:
		return "LOG_Data"
	case LOGDisplay:
		return "LOG_Display"
	case LOGPrinter:
		return "LOG_Printer"
	case LOGPrinterActive:
		return "LOG_Printer_Active"
	default:
		return "UNKNOWN"
	}
}

// Wire delimiter bytes, repeated here (rather than imported from wire)
// because the state machine's byte comparisons are the protocol itself.
const (
	DelimPoll    = 0x90 // printer poll start
	DelimDisplay = 0x91 // VFD display frame start
	DelimBoundary = 0x98 // display-segment boundary / printer response
)

// endMarker is the literal ";end\r" that terminates a report/history
// data record, checked against the last 5 accumulated bytes.
var endMarker = []byte{0x3B, 0x65, 0x6E, 0x64, 0x0D}
