// internal/status/snapshot.go
package status

import "math"

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
// Fields are register-width; use Clamp16/Clamp32 when filling them.
type Snapshot struct {
	Health        uint16
	LastErrorCode uint16

	ActualRate uint32 // Fs, never the requested rate
	Samples    uint32
	Channels   uint16
	Decimation uint16
}

// Clamp16 saturates v into one register.
func Clamp16(v int) uint16 {
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(v)
}

// Clamp32 saturates v into a hi/lo register pair.
func Clamp32(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case uint64(v) > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}
