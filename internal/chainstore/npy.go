package chainstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// writeNPY writes a 2D float64 matrix to path in NumPy's .npy v1.0
// format (magic, version, header dict, then row-major float64 data). No
// package in the retrieved corpus writes NumPy files, so this is a
// minimal hand-rolled encoder against the documented format rather than
// a dependency substitute.
func writeNPY(path string, data [][]float64) error {
	rows := len(data)
	cols := 0
	if rows > 0 {
		cols = len(data[0])
	}

	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d), }", rows, cols)
	// Pad the header so magic+version+headerlen+header+padding is a
	// multiple of 64 bytes, as the format requires, ending in '\n'.
	const preludeLen = 10 // magic(6) + version(2) + headerlen(2)
	total := preludeLen + len(header) + 1
	pad := (64 - total%64) % 64
	header += string(bytes.Repeat([]byte{' '}, pad)) + "\n"

	buf := new(bytes.Buffer)
	buf.WriteString("\x93NUMPY")
	buf.WriteByte(1) // major version
	buf.WriteByte(0) // minor version
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	buf.WriteString(header)

	for _, row := range data {
		for _, v := range row {
			if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
				return err
			}
		}
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
