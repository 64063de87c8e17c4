// Package find locates the serial device that belongs to a USB adapter.
package find

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/multierr"
)

// ErrNotFound is returned when no attached device satisfies the filter.
var ErrNotFound = errors.New("no matching serial device found")

// ByIDDir is where udev publishes stable per-device symlinks on Linux.
var ByIDDir = "/dev/serial/by-id"

type FilterFn func(*Port) bool

// SerialFilter matches a device by its USB serial number. Prologix adapters
// ship with an FTDI serial such as "PXG9ASAT".
func SerialFilter(s string) FilterFn {
	return func(p *Port) bool { return p.Serial == s }
}

// PrologixFilter matches the FTDI bridge used by Prologix GPIB-USB adapters.
func PrologixFilter(p *Port) bool {
	return strings.EqualFold(p.VID, "0403") && strings.EqualFold(p.PID, "6001")
}

// Port describes one attached serial device.
type Port struct {
	Dev      string // device path, e.g. /dev/ttyUSB0
	VID, PID string
	Serial   string
	Product  string
}

func (p Port) String() string {
	return fmt.Sprintf("dev %s vid/pid %s/%s serial %s product %q", p.Dev, p.VID, p.PID, p.Serial, p.Product)
}

type Ports []Port

func (ps Ports) String() string {
	s := make([]string, 0, len(ps))
	for _, p := range ps {
		s = append(s, p.String())
	}
	return strings.Join(s, "\n")
}

// Lister enumerates attached serial devices. It is a variable so that tests
// can replace it.
var Lister = AllPorts

// Find returns the device path of the first port for which filter returns
// true. With a nil filter exactly one port must be attached.
func Find(filter FilterFn) (string, error) {
	ports, err := Lister()
	if err != nil && len(ports) == 0 {
		return "", err
	}
	if filter != nil {
		for i := range ports {
			if filter(&ports[i]) {
				return ports[i].Dev, nil
			}
		}
		return "", ErrNotFound
	}

	switch len(ports) {
	case 0:
		return "", ErrNotFound
	case 1:
		return ports[0].Dev, nil
	}
	return "", fmt.Errorf("multiple serial devices, use a filter:\n%s", ports)
}

// BySerial resolves a USB serial number to a device path.
func BySerial(serial string) (string, error) {
	dev, err := Find(SerialFilter(serial))
	if err != nil {
		return "", fmt.Errorf("serial number %s: %w", serial, err)
	}
	return dev, nil
}

// AllPorts lists USB serial ports via the platform enumerator, then adds any
// device found under ByIDDir that the enumerator did not report. Errors from
// either source are combined; ports found by the other source are still
// returned.
func AllPorts() (Ports, error) {
	var errs error
	var ports Ports
	seen := map[string]bool{}

	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, d := range details {
		if !d.IsUSB {
			continue
		}
		ports = append(ports, Port{
			Dev:     d.Name,
			VID:     d.VID,
			PID:     d.PID,
			Serial:  d.SerialNumber,
			Product: d.Product,
		})
		seen[d.Name] = true
	}

	byID, err := byIDPorts(ByIDDir)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, p := range byID {
		if !seen[p.Dev] {
			ports = append(ports, p)
		}
	}
	return ports, errs
}

// byIDPorts reads links such as
//
//	usb-Prologix_Prologix_GPIB-USB_Controller_PXG9ASAT-if00-port0 -> ../../ttyUSB0
//
// and takes the serial number from the last "_" field before the interface
// suffix.
func byIDPorts(dir string) (Ports, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var ports Ports
	for _, e := range entries {
		link := filepath.Join(dir, e.Name())
		dev, err := filepath.EvalSymlinks(link)
		if err != nil {
			continue
		}
		ports = append(ports, Port{
			Dev:     dev,
			Serial:  serialFromByID(e.Name()),
			Product: e.Name(),
		})
	}
	return ports, nil
}

func serialFromByID(name string) string {
	name = strings.TrimPrefix(name, "usb-")
	if i := strings.Index(name, "-if"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}
