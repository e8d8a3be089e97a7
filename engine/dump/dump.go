// Package dump renders the raw bytes fed into the protocol state
// machine as classic offset/hex/ascii rows, the same shape the teacher's
// devices log register dumps under a Debug flag rather than a bespoke
// formatter.
package dump

import (
	"fmt"
	"strings"
)

// Hex renders buf as a multi-line offset/hex/ascii dump, 16 bytes per
// row, matching the layout of a typical hex-editor pane.
func Hex(buf []byte) string {
	var b strings.Builder
	for off := 0; off < len(buf); off += 16 {
		end := off + 16
		if end > len(buf) {
			end = len(buf)
		}
		row := buf[off:end]
		fmt.Fprintf(&b, "%06x  ", off)
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(&b, "%02x ", row[i])
			} else {
				b.WriteString("   ")
			}
			if i == 7 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(" |")
		for _, c := range row {
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
