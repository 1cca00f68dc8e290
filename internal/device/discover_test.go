// internal/device/discover_test.go
package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"

	"github.com/kushal-thapa/dataq/internal/status"
)

func ports(list ...*enumerator.PortDetails) Enumerator {
	return func() ([]*enumerator.PortDetails, error) {
		return list, nil
	}
}

func TestHardwareID(t *testing.T) {
	require.Equal(t, "n/a", HardwareID(&enumerator.PortDetails{Name: "/dev/ttyS0"}))
	require.Equal(t, "USB VID:PID=0683:1100 SER=ABC",
		HardwareID(&enumerator.PortDetails{IsUSB: true, VID: "0683", PID: "1100", SerialNumber: "ABC"}))
	require.Equal(t, "USB VID:PID=2341:003E",
		HardwareID(&enumerator.PortDetails{IsUSB: true, VID: "2341", PID: "003e"}))
}

func TestDiscoverFirstMatch(t *testing.T) {
	h, err := Discover(ports(
		&enumerator.PortDetails{Name: "/dev/ttyS0"},
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
		&enumerator.PortDetails{Name: "/dev/ttyACM1", IsUSB: true, VID: "0683", PID: "1100"},
		&enumerator.PortDetails{Name: "/dev/ttyACM2", IsUSB: true, VID: "0683", PID: "1100"},
	), "")
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM1", h.Port)
	require.Equal(t, DataBaud, h.Baud)
	require.Zero(t, h.ReadTimeout)
}

func TestDiscoverNotFound(t *testing.T) {
	_, err := Discover(ports(
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
	), Signature)
	require.ErrorIs(t, err, ErrDeviceNotFound)
	require.Equal(t, status.ErrCodeDeviceNotFound, status.ErrorCode(err))
}

func TestDiscoverEnumerateError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Discover(func() ([]*enumerator.PortDetails, error) { return nil, boom }, "")
	require.ErrorIs(t, err, boom)
	require.False(t, errors.Is(err, ErrDeviceNotFound))
}

func TestDiscoverCustomSignature(t *testing.T) {
	h, err := Discover(ports(
		&enumerator.PortDetails{Name: "COM7", IsUSB: true, VID: "0683", PID: "2108"},
	), "VID:PID=0683:2108")
	require.NoError(t, err)
	require.Equal(t, "COM7", h.Port)
}
