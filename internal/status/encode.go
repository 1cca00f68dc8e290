// internal/status/encode.go
package status

// Encode converts a Snapshot into the live part of a status block.
// Device name slots are left zero; see EncodeName.
// Layout is protocol-locked. No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotActualRateHi] = uint16(s.ActualRate >> 16)
	regs[SlotActualRateLo] = uint16(s.ActualRate)
	regs[SlotSamplesHi] = uint16(s.Samples >> 16)
	regs[SlotSamplesLo] = uint16(s.Samples)
	regs[SlotChannels] = s.Channels
	regs[SlotDecimation] = s.Decimation

	return regs
}

// EncodeName packs up to 16 ASCII characters into 8 registers,
// two bytes per register, big-endian. Non-printable bytes become '?'.
func EncodeName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
