package falcon8

import (
	libusb "github.com/gotmc/libusb/v2"
)

// usbDevice and usbHandle cover exactly the slice of libusb this package
// touches. The session lifecycle (detach, claim, transfer, release,
// reattach) runs against these, so it can be exercised without hardware.

type usbDevice interface {
	DeviceDescriptor() (*libusb.Descriptor, error)
	ActiveConfigDescriptor() (*libusb.ConfigDescriptor, error)
	Open() (usbHandle, error)
}

type usbHandle interface {
	ClaimInterface(iface int) error
	ReleaseInterface(iface int) error
	KernelDriverActive(iface int) (bool, error)
	DetachKernelDriver(iface int) error
	AttachKernelDriver(iface int) error
	ControlTransfer(requestType byte, request byte, value uint16, index uint16, data []byte, length int, timeout int) (int, error)
	StringDescriptorASCII(index uint8) (string, error)
	Close() error
}

// libusbDevice adapts *libusb.Device to usbDevice. The opened
// *libusb.DeviceHandle satisfies usbHandle directly.
type libusbDevice struct {
	dev *libusb.Device
}

func (d libusbDevice) DeviceDescriptor() (*libusb.Descriptor, error) {
	return d.dev.DeviceDescriptor()
}

func (d libusbDevice) ActiveConfigDescriptor() (*libusb.ConfigDescriptor, error) {
	return d.dev.ActiveConfigDescriptor()
}

func (d libusbDevice) Open() (usbHandle, error) {
	handle, err := d.dev.Open()
	if err != nil {
		return nil, err
	}
	return handle, nil
}
