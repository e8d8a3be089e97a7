// Package status implements the one-byte printer status register exposed
// to the 1022 on every poll reply.
package status

// Bit positions within the status byte. PRWON and READY are set at power-on
// and LOGMODE is set and cleared on log-mode entry/exit; the remaining bits,
// PRBUSY included, exist on the real printer module but are never set here.
const (
	NoPaper byte = 1 << 7 // not used
	PRWON   byte = 1 << 6
	ProffLn byte = 1 << 5 // not used
	LogMode byte = 1 << 4
	PRBusy  byte = 1 << 3
	Ready   byte = 1 << 2
	NotRdy  byte = 1 << 1 // not used
	Unplug  byte = 1 << 0 // not used
)

// Register holds the current status byte. Owned single-threaded by the
// driver loop; no lock is needed (see DESIGN.md).
type Register struct {
	b byte
}

// New returns a Register in its power-on state: PRWON | READY.
func New() *Register {
	return &Register{b: PRWON | Ready}
}

// Get returns the current status byte as sent on the wire.
func (r *Register) Get() byte {
	return r.b
}

// SetLogMode sets the LOGMODE bit.
func (r *Register) SetLogMode() {
	r.b |= LogMode
}

// ClearLogMode clears the LOGMODE bit.
func (r *Register) ClearLogMode() {
	r.b &^= LogMode
}

// IsLogMode reports whether the LOGMODE bit is currently set.
func (r *Register) IsLogMode() bool {
	return r.b&LogMode != 0
}
