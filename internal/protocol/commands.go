// internal/protocol/commands.go

// Package protocol implements the DI-1100 text command protocol: CR
// terminated ASCII commands, echoed back by the device while it is not
// scanning, sharing one byte stream with the binary sample packets.
package protocol

import "fmt"

// Terminator ends every command.
const Terminator = '\r'

// Fixed commands.
const (
	Stop              = "stop"
	Start             = "start"
	EncodeBinary      = "encode 0" // binary sample output
	PacketSizeDefault = "ps 0"     // 16-byte device packet size
	SrateQuery        = "srate"
)

// FilterMode selects how the device reduces samples when decimating.
type FilterMode int

const (
	FilterLastPoint FilterMode = 0
	FilterAverage   FilterMode = 1
	FilterMaximum   FilterMode = 2
	FilterMinimum   FilterMode = 3
)

var filterModes = map[FilterMode]string{
	FilterLastPoint: "last point",
	FilterAverage:   "average",
	FilterMaximum:   "maximum",
	FilterMinimum:   "minimum",
}

func (m FilterMode) String() string {
	if s, ok := filterModes[m]; ok {
		return s
	}
	return fmt.Sprintf("filter(%d)", int(m))
}

// Info queries device information; 1 is the model number.
func Info(n int) string { return fmt.Sprintf("info %d", n) }

// Dec sets the primary decimation factor.
func Dec(n int) string { return fmt.Sprintf("dec %d", n) }

// Deca sets the secondary decimation factor.
func Deca(n int) string { return fmt.Sprintf("deca %d", n) }

// Filter sets the decimation filter for one analog channel.
func Filter(channel int, mode FilterMode) string {
	return fmt.Sprintf("filter %d %d", channel, int(mode))
}

// Slist assigns channel to scan-list position pos.
func Slist(pos, channel int) string { return fmt.Sprintf("slist %d %d", pos, channel) }

// Srate sets the sample-rate divisor of the 60 MHz clock.
func Srate(divisor int) string { return fmt.Sprintf("srate %d", divisor) }

// LED sets the indicator color by index.
func LED(index int) string { return fmt.Sprintf("led %d", index) }

// Encode frames cmd for the wire.
func Encode(cmd string) []byte {
	b := make([]byte, 0, len(cmd)+1)
	b = append(b, cmd...)
	return append(b, Terminator)
}
