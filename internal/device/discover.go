// internal/device/discover.go
package device

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"go.bug.st/serial/enumerator"

	"github.com/kushal-thapa/dataq/internal/status"
)

// Signature is the DATAQ Instruments USB vendor id as it appears in a
// hardware id string.
const Signature = "VID:PID=0683"

// ErrDeviceNotFound is returned when no endpoint carries the signature.
// There is nothing meaningful to capture; callers abort the run.
var ErrDeviceNotFound error = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "device: no DATAQ device found" }

// Code implements the status error coder.
func (notFoundError) Code() uint16 { return status.ErrCodeDeviceNotFound }

// Enumerator lists candidate endpoints.
type Enumerator func() ([]*enumerator.PortDetails, error)

// SystemPorts enumerates the host's serial endpoints.
var SystemPorts Enumerator = enumerator.GetDetailedPortsList

// HardwareID renders p the way pyserial's list_ports does, e.g.
// "USB VID:PID=0683:1100 SER=5E3E1A5B". Non-USB ports have no id.
func HardwareID(p *enumerator.PortDetails) string {
	if p == nil || !p.IsUSB {
		return "n/a"
	}
	id := fmt.Sprintf("USB VID:PID=%s:%s", strings.ToUpper(p.VID), strings.ToUpper(p.PID))
	if p.SerialNumber != "" {
		id += " SER=" + p.SerialNumber
	}
	return id
}

// Discover returns a data handle for the first endpoint whose hardware
// id contains signature. Only one device is ever addressed: when several
// match, the first in enumeration order wins and the rest are logged.
func Discover(enum Enumerator, signature string) (Handle, error) {
	if enum == nil {
		enum = SystemPorts
	}
	if signature == "" {
		signature = Signature
	}

	ports, err := enum()
	if err != nil {
		return Handle{}, fmt.Errorf("device: enumerate ports: %w", err)
	}

	var found string
	for _, p := range ports {
		hwid := HardwareID(p)
		if !strings.Contains(hwid, signature) {
			glog.V(2).Infof("skip port=%s hwid=%q", p.Name, hwid)
			continue
		}
		if found != "" {
			glog.Warningf("ignoring additional device port=%s hwid=%q (using %s)", p.Name, hwid, found)
			continue
		}
		found = p.Name
	}

	if found == "" {
		return Handle{}, ErrDeviceNotFound
	}

	return DataHandle(found), nil
}
