// internal/status/constants.go
package status

// Meter Status Block layout constants.
// These values define the register protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per exported meter.
const SlotsPerDevice = 32

// ---- HEALTH SLOTS ----

// SlotHealthCode holds the acquisition health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last session error code (see CodeFor).
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the session has been in error.
const SlotSecondsInError = 2

// ---- TOTALS ----

// SlotSamplesStart is the first of 4 registers holding the uint64 sample count.
const SlotSamplesStart = 3
const SlotSamplesSlots = 4

// SlotAhStart is the first of 8 registers holding Ah_total in femto-Ah (int128).
const SlotAhStart = 7

// SlotWhStart is the first of 8 registers holding Wh_total in femto-Wh (int128).
const SlotWhStart = 15

// TotalSlots is the width of one int128 total.
const TotalSlots = 8

// ---- RESERVED ----

// Slot 23 is reserved.
const SlotReserved = 23

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the block.
const SlotDeviceNameStart = 24

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before the first block.
const HealthUnknown uint16 = 0

// HealthOK represents an accumulating session.
const HealthOK uint16 = 1

// HealthError represents a failed session.
const HealthError uint16 = 2

// HealthStale represents a session waiting on the instrument.
const HealthStale uint16 = 3

// HealthStopped represents a session that ended and flushed.
const HealthStopped uint16 = 4
