package falcon8

import (
	"fmt"
	"sync/atomic"
)

// notFound is reported in place of string descriptors the device does not
// provide.
const notFound = "Not Found"

// DeviceInfo is the human-readable identity of an opened keypad.
type DeviceInfo struct {
	VendorID      ID
	ProductID     ID
	Manufacturer  string
	Product       string
	SerialNumber  string
	Configuration uint8
}

func (i DeviceInfo) String() string {
	return fmt.Sprintf("%s:%s %s %s (serial %s, configuration %d)",
		i.VendorID, i.ProductID, i.Manufacturer, i.Product, i.SerialNumber, i.Configuration)
}

// Info reads the device's descriptor strings and active configuration
// value. It is informational only; the report-read path does not use it.
func (d *Device) Info() (DeviceInfo, error) {
	if atomic.LoadInt32(&d.closed) == 1 {
		return DeviceInfo{}, ErrDeviceClosed
	}

	desc, err := d.dev.DeviceDescriptor()
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	config, err := d.dev.ActiveConfigDescriptor()
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	return DeviceInfo{
		VendorID:      ID(desc.VendorID),
		ProductID:     ID(desc.ProductID),
		Manufacturer:  d.descriptorString(uint8(desc.ManufacturerIndex)),
		Product:       d.descriptorString(uint8(desc.ProductIndex)),
		SerialNumber:  d.descriptorString(uint8(desc.SerialNumberIndex)),
		Configuration: uint8(config.ConfigurationValue),
	}, nil
}

// descriptorString resolves one string descriptor. Index 0 means the
// device declares no such string.
func (d *Device) descriptorString(index uint8) string {
	if index == 0 {
		return notFound
	}
	s, err := d.handle.StringDescriptorASCII(index)
	if err != nil {
		return notFound
	}
	return s
}
