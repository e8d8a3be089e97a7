// Package replay implements the -u unit-test/replay mode: a capture
// file stands in for the serial port so the state machine can be driven
// deterministically without a real tty. Only a file path is accepted;
// there is no embedded fixture set selectable by index.
package replay

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader replays a captured byte stream through the same Read contract
// as a real serial port: each call returns whatever is left, and io.EOF
// once exhausted. It satisfies engine/serialport.Port when paired with
// a no-op Write/Close.
type Reader struct {
	data []byte
	pos  int
}

// Open loads a capture file. Two formats are accepted: raw binary, and
// a plain hex dump (one "xx xx xx ..." group of bytes per line, '#'
// comments allowed). The offset and |ascii| columns of dump.Hex output
// are not recognised: such a file is not detected as a hex dump and is
// replayed as raw binary.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", path, err)
	}
	defer f.Close()

	peek := make([]byte, 512)
	n, _ := f.Read(peek)
	if looksLikeHex(peek[:n]) {
		f.Seek(0, io.SeekStart)
		data, err := decodeHexDump(f)
		if err != nil {
			return nil, fmt.Errorf("replay: decode hex dump %s: %w", path, err)
		}
		return &Reader{data: data}, nil
	}

	f.Seek(0, io.SeekStart)
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("replay: read %s: %w", path, err)
	}
	return &Reader{data: data}, nil
}

// NewFromBytes wraps an in-memory capture directly, used by tests.
func NewFromBytes(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// Write discards outbound bytes — replay mode is always effectively
// passive from the emulator's point of view even when -p isn't set,
// since there is no real 1022 on the other end to talk to.
func (r *Reader) Write(p []byte) (int, error) { return len(p), nil }

// Close is a no-op; there is no underlying descriptor.
func (r *Reader) Close() error { return nil }

func looksLikeHex(b []byte) bool {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" {
		return false
	}
	for _, line := range strings.SplitN(trimmed, "\n", 2) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return false
		}
		for _, f := range fields {
			if _, err := hex.DecodeString(f); err != nil {
				return false
			}
		}
		return true
	}
	return false
}

func decodeHexDump(r io.Reader) ([]byte, error) {
	var out []byte
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, tok := range strings.Fields(line) {
			b, err := hex.DecodeString(tok)
			if err != nil {
				continue
			}
			out = append(out, b...)
		}
	}
	return out, sc.Err()
}
