// Package find locates USB serial adapters by walking /sys/class/tty,
// so example programs can pick up a GPIB controller without hardcoding
// a port name.
package find

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Device describes one USB tty as reported by sysfs.
type Device struct {
	Name         string // tty name, e.g. ttyUSB0
	Path         string // resolved sysfs path
	VendorID     string
	ProductID    string
	Manufacturer string
	Product      string
	Serial       string
}

// Dev returns the device node path, e.g. /dev/ttyUSB0.
func (d Device) Dev() string {
	return "/dev/" + d.Name
}

func (d Device) String() string {
	return fmt.Sprintf("%s vid/pid %s/%s mfg %q product %q serial %q",
		d.Dev(), d.VendorID, d.ProductID, d.Manufacturer, d.Product, d.Serial)
}

// Filter reports whether a device is the one being looked for.
type Filter func(Device) bool

// PrologixFilter matches Prologix GPIB-USB adapters. They enumerate
// with an FTDI bridge (vendor 0403) and report Prologix as the
// manufacturer string.
func PrologixFilter(d Device) bool {
	return strings.Contains(d.Manufacturer, "Prologix") || d.VendorID == "0403"
}

// SerialFilter matches a device by its USB serial number.
func SerialFilter(serial string) Filter {
	return func(d Device) bool { return d.Serial == serial }
}

// Find returns the device node of the single USB tty matching filter.
// A nil filter accepts everything. It is an error when no device, or
// more than one, matches.
func Find(filter Filter) (string, error) {
	devs, err := All()
	if err != nil {
		return "", err
	}
	return pick(devs, filter)
}

func pick(devs []Device, filter Filter) (string, error) {
	if filter != nil {
		matched := devs[:0:0]
		for _, d := range devs {
			if filter(d) {
				matched = append(matched, d)
			}
		}
		devs = matched
	}
	switch len(devs) {
	case 0:
		return "", errors.New("no matching usb tty found")
	case 1:
		return devs[0].Dev(), nil
	}
	names := make([]string, len(devs))
	for i, d := range devs {
		names[i] = d.String()
	}
	return "", fmt.Errorf("multiple usb ttys match:\n%s", strings.Join(names, "\n"))
}

// All enumerates the USB ttys currently present. Entries under
// /sys/class/tty are symlinks into /sys/devices; only those resolving
// through a usb bus segment are kept.
func All() ([]Device, error) {
	const sysTTY = "/sys/class/tty/"
	entries, err := os.ReadDir(sysTTY)
	if err != nil {
		return nil, err
	}
	var devs []Device
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		abs, err := filepath.EvalSymlinks(filepath.Join(sysTTY, e.Name()))
		if err != nil {
			logrus.WithError(err).Debugf("skipping %s", e.Name())
			continue
		}
		if !strings.Contains(abs, "usb") {
			continue
		}
		// The device symlink points at the interface directory; the
		// descriptor strings live one level above it.
		iface, err := filepath.EvalSymlinks(filepath.Join(abs, "device"))
		if err != nil {
			logrus.WithError(err).Debugf("no device dir under %s", abs)
			continue
		}
		usb := filepath.Dir(iface)
		devs = append(devs, Device{
			Name:         e.Name(),
			Path:         abs,
			VendorID:     readAttr(usb, "idVendor"),
			ProductID:    readAttr(usb, "idProduct"),
			Manufacturer: readAttr(usb, "manufacturer"),
			Product:      readAttr(usb, "product"),
			Serial:       readAttr(usb, "serial"),
		})
	}
	return devs, nil
}

// readAttr reads one sysfs attribute file, returning "" when absent.
func readAttr(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
