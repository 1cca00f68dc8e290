// internal/capture/decode.go
package capture

import (
	"encoding/binary"
	"fmt"

	"github.com/kushal-thapa/dataq/internal/status"
)

// BytesPerSample is the width of one raw value.
const BytesPerSample = 2

// MalformedPacketError means the buffer does not hold exactly the
// expected number of whole packets. It indicates a framing bug and the
// buffer is not truncated further.
type MalformedPacketError struct {
	Len   int
	Rows  int
	Width int
}

func (e *MalformedPacketError) Error() string {
	return fmt.Sprintf("capture: malformed packets: %d bytes, want %d rows of %d bytes", e.Len, e.Rows, e.Width)
}

// Code implements the status error coder.
func (e *MalformedPacketError) Code() uint16 { return status.ErrCodeMalformedPacket }

// Trim drops whole-chunk overshoot beyond rows packets.
func Trim(buf []byte, rows, cols int) []byte {
	want := rows * cols * BytesPerSample
	if len(buf) > want {
		return buf[:want]
	}
	return buf
}

// Decode reinterprets buf as rows x cols little-endian int16 values,
// row-major. Column i is scan-list position i.
func Decode(buf []byte, rows, cols int) ([][]int16, error) {
	if cols <= 0 || rows < 0 {
		return nil, fmt.Errorf("capture: invalid grid %dx%d", rows, cols)
	}
	width := cols * BytesPerSample
	if len(buf)%width != 0 || len(buf)/width != rows {
		return nil, &MalformedPacketError{Len: len(buf), Rows: rows, Width: width}
	}

	flat := make([]int16, rows*cols)
	for i := range flat {
		flat[i] = int16(binary.LittleEndian.Uint16(buf[i*BytesPerSample:]))
	}

	grid := make([][]int16, rows)
	for r := range grid {
		grid[r] = flat[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return grid, nil
}
