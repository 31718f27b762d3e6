// Package falcon8 reads status reports from MAX Falcon-8 keypads over raw
// USB. It discovers keypads by vendor/product ID, takes the interface away
// from the host kernel driver for the duration of a single control-transfer
// read, and restores the prior driver state before returning.
package falcon8

import (
	"fmt"
	"runtime"

	libusb "github.com/gotmc/libusb/v2"
	"github.com/sirupsen/logrus"
)

// ID represents a vendor or product ID.
type ID uint16

// String returns a hexadecimal ID.
func (id ID) String() string {
	return fmt.Sprintf("%04x", int(id))
}

// Falcon-8 identity as reported in its device descriptor.
const (
	VendorID  = ID(0x0483)
	ProductID = ID(0x5750)
)

// DefaultReportLength is the size of the keypad's status feature report.
const DefaultReportLength = 64

type Options struct {
	// VendorID and ProductID select which attached devices Devices opens.
	// Zero values fall back to the Falcon-8 identity.
	VendorID  ID
	ProductID ID

	// EndpointIndex picks which endpoint of the walked configuration
	// descriptor drives report reads; the claimed interface is the one
	// that endpoint was declared under. The Falcon-8 exposes a single
	// interface with one interrupt-IN endpoint, so the default of 0 is
	// the right choice for real hardware.
	EndpointIndex int

	// ReportLength sizes the buffer Report allocates. Defaults to
	// DefaultReportLength.
	ReportLength int

	Debug bool
}

// Hub owns the libusb context every Device derives from. The hub must
// outlive its devices: close every Device before closing the Hub.
type Hub struct {
	usb       *libusb.Context
	options   Options
	canDetach bool
	logger    *logrus.Logger
}

// New initializes a libusb context. A nil logger silences the package.
func New(options Options, logger *logrus.Logger) (*Hub, error) {
	usb, err := libusb.NewContext()
	if err != nil {
		return nil, fmt.Errorf("falcon8: initializing libusb: %v", err)
	}

	if options.VendorID == 0 {
		options.VendorID = VendorID
	}
	if options.ProductID == 0 {
		options.ProductID = ProductID
	}
	if options.ReportLength <= 0 {
		options.ReportLength = DefaultReportLength
	}

	return &Hub{
		usb:       usb,
		options:   options,
		canDetach: runtime.GOOS != "windows",
		logger:    logger,
	}, nil
}

// Close tears down the libusb context.
func (h *Hub) Close() error {
	return h.usb.Close()
}

func (h *Hub) Log(msg string) {
	if h.logger != nil {
		h.logger.Info(fmt.Sprintf("[falcon8] %s", msg))
	}
}

func (h *Hub) Warn(msg string) {
	if h.logger != nil {
		h.logger.Warn(fmt.Sprintf("[falcon8] %s", msg))
	}
}

func (h *Hub) Error(msg string) {
	if h.logger != nil {
		h.logger.Error(fmt.Sprintf("[falcon8] %s", msg))
	}
}

// Devices enumerates every USB device on the host and opens the ones whose
// descriptor matches the configured vendor and product ID, one Device per
// attached keypad. Devices that yield no descriptor or cannot be opened
// (often a udev permissions problem) are logged and skipped; ErrNotFound
// is returned only when nothing was opened.
func (h *Hub) Devices() ([]*Device, error) {
	list, err := h.usb.DeviceList()
	if err != nil {
		return nil, fmt.Errorf("falcon8: enumerating devices: %v", err)
	}

	devices := make([]usbDevice, len(list))
	for i, dev := range list {
		devices[i] = libusbDevice{dev}
	}
	return h.openMatching(devices)
}

func (h *Hub) openMatching(list []usbDevice) ([]*Device, error) {
	var devices []*Device
	for _, dev := range list {
		desc, err := dev.DeviceDescriptor()
		if err != nil {
			h.Warn(fmt.Sprintf("skipping device without descriptor: %v", err))
			continue
		}
		if ID(desc.VendorID) != h.options.VendorID || ID(desc.ProductID) != h.options.ProductID {
			continue
		}

		handle, err := dev.Open()
		if err != nil {
			if isPermissionError(err) {
				h.Warn(fmt.Sprintf("matching device %s:%s denied, check udev permissions: %v",
					h.options.VendorID, h.options.ProductID, err))
			} else {
				h.Warn(fmt.Sprintf("matching device %s:%s could not be opened: %v",
					h.options.VendorID, h.options.ProductID, err))
			}
			continue
		}

		devices = append(devices, &Device{
			dev:       dev,
			handle:    handle,
			options:   h.options,
			canDetach: h.canDetach,
			logger:    h.logger,
		})
	}

	if len(devices) == 0 {
		return nil, ErrNotFound
	}
	return devices, nil
}
