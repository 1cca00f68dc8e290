// internal/status/constants.go
package status

// Acquisition status block layout constants.
// These values define the published register map and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the acquisition health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code (see ErrCode*).
const SlotLastErrorCode = 1

// SlotActualRateHi/Lo hold the negotiated sample rate Fs as a big-endian uint32.
const SlotActualRateHi = 2
const SlotActualRateLo = 3

// SlotSamplesHi/Lo hold the resolved sample count as a big-endian uint32.
const SlotSamplesHi = 4
const SlotSamplesLo = 5

// SlotChannels holds the number of scan-list entries.
const SlotChannels = 6

// SlotDecimation holds the decimation factor in use.
const SlotDecimation = 7

// ---- RESERVED RANGE ----

// Slots 8-10 are reserved for future use.
const SlotReservedStart = 8
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a completed acquisition.
const HealthOK uint16 = 1

// HealthError represents a failed acquisition.
const HealthError uint16 = 2

// HealthAcquiring represents a configured device that is streaming.
const HealthAcquiring uint16 = 3

// HealthStopped represents an acquisition stopped by the operator.
const HealthStopped uint16 = 4

// ---- ERROR CODES ----

const (
	ErrCodeNone            uint16 = 0
	ErrCodeGeneric         uint16 = 1
	ErrCodeDeviceNotFound  uint16 = 10
	ErrCodeTransport       uint16 = 11
	ErrCodeConfigTimeout   uint16 = 12
	ErrCodeMalformedPacket uint16 = 13
	ErrCodeOverflow        uint16 = 14
	ErrCodeCanceled        uint16 = 15
)
