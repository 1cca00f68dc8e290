// internal/capture/calibrate.go
package capture

// Calibration constants for the ±10 V, 16-bit signed input range.
const (
	FullScaleVolts = 10.0
	ScaleFactor    = FullScaleVolts / 32768

	// MarkerMask clears the two digital-marker bits carried in the
	// low bits of the marker channel.
	MarkerMask = 0xFFFC
)

// NoMarker disables masking in Calibrate.
const NoMarker = -1

// Volts converts one raw sample.
func Volts(raw int16, marker bool) float64 {
	if marker {
		raw = int16(uint16(raw) & MarkerMask)
	}
	return float64(raw) * ScaleFactor
}

// Calibrate converts a decoded grid to volts. Column markerCol is
// masked before scaling; pass NoMarker to mask nothing.
func Calibrate(raw [][]int16, markerCol int) [][]float64 {
	out := make([][]float64, len(raw))
	for r, row := range raw {
		vals := make([]float64, len(row))
		for c, v := range row {
			vals[c] = Volts(v, c == markerCol)
		}
		out[r] = vals
	}
	return out
}
