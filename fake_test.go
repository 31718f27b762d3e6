package falcon8

import (
	"fmt"

	libusb "github.com/gotmc/libusb/v2"
)

// fakeHandle implements usbHandle and records the order of operations so
// tests can assert acquisition and cleanup sequencing.
type fakeHandle struct {
	ops []string

	kernelActive   bool
	kernelQueryErr error
	detachErr      error
	attachErr      error
	claimErr       error
	releaseErr     error
	transferErr    error

	report  []byte
	strings map[uint8]string

	claimed bool

	lastRequestType byte
	lastRequest     byte
	lastValue       uint16
	lastIndex       uint16
	lastLength      int
	lastTimeout     int
}

func (f *fakeHandle) ClaimInterface(iface int) error {
	f.ops = append(f.ops, fmt.Sprintf("claim %d", iface))
	if f.claimErr != nil {
		return f.claimErr
	}
	f.claimed = true
	return nil
}

func (f *fakeHandle) ReleaseInterface(iface int) error {
	f.ops = append(f.ops, fmt.Sprintf("release %d", iface))
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.claimed = false
	return nil
}

func (f *fakeHandle) KernelDriverActive(iface int) (bool, error) {
	f.ops = append(f.ops, fmt.Sprintf("query %d", iface))
	return f.kernelActive, f.kernelQueryErr
}

func (f *fakeHandle) DetachKernelDriver(iface int) error {
	f.ops = append(f.ops, fmt.Sprintf("detach %d", iface))
	if f.detachErr != nil {
		return f.detachErr
	}
	f.kernelActive = false
	return nil
}

func (f *fakeHandle) AttachKernelDriver(iface int) error {
	f.ops = append(f.ops, fmt.Sprintf("attach %d", iface))
	if f.attachErr != nil {
		return f.attachErr
	}
	f.kernelActive = true
	return nil
}

func (f *fakeHandle) ControlTransfer(requestType byte, request byte, value uint16, index uint16, data []byte, length int, timeout int) (int, error) {
	f.ops = append(f.ops, "transfer")
	f.lastRequestType = requestType
	f.lastRequest = request
	f.lastValue = value
	f.lastIndex = index
	f.lastLength = length
	f.lastTimeout = timeout
	if f.transferErr != nil {
		return 0, f.transferErr
	}
	return copy(data, f.report), nil
}

func (f *fakeHandle) StringDescriptorASCII(index uint8) (string, error) {
	s, ok := f.strings[index]
	if !ok {
		return "", fmt.Errorf("no string descriptor %d", index)
	}
	return s, nil
}

func (f *fakeHandle) Close() error {
	f.ops = append(f.ops, "close")
	return nil
}

// fakeUSBDevice implements usbDevice.
type fakeUSBDevice struct {
	desc      *libusb.Descriptor
	descErr   error
	config    *libusb.ConfigDescriptor
	configErr error
	handle    *fakeHandle
	openErr   error
}

func (f *fakeUSBDevice) DeviceDescriptor() (*libusb.Descriptor, error) {
	return f.desc, f.descErr
}

func (f *fakeUSBDevice) ActiveConfigDescriptor() (*libusb.ConfigDescriptor, error) {
	return f.config, f.configErr
}

func (f *fakeUSBDevice) Open() (usbHandle, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.handle, nil
}

// singleEndpointConfig mirrors the keypad's real layout: one configuration,
// one interface, one alternate setting, one interrupt-IN endpoint.
func singleEndpointConfig() *libusb.ConfigDescriptor {
	return &libusb.ConfigDescriptor{
		ConfigurationValue: 1,
		SupportedInterfaces: libusb.SupportedInterfaces{
			&libusb.SupportedInterface{
				InterfaceDescriptors: libusb.InterfaceDescriptors{
					&libusb.InterfaceDescriptor{
						InterfaceNumber:  0,
						AlternateSetting: 0,
						EndpointDescriptors: libusb.EndpointDescriptors{
							&libusb.EndpointDescriptor{EndpointAddress: 0x81},
						},
					},
				},
			},
		},
	}
}

func newTestDevice(dev *fakeUSBDevice, handle *fakeHandle) *Device {
	return &Device{
		dev:       dev,
		handle:    handle,
		options:   Options{VendorID: VendorID, ProductID: ProductID, ReportLength: DefaultReportLength},
		canDetach: true,
	}
}
