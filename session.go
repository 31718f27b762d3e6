package falcon8

import (
	"fmt"
	"sync"
	"sync/atomic"

	libusb "github.com/gotmc/libusb/v2"
	"github.com/sirupsen/logrus"
)

// Control transfer that fetches the status report: HID GetReport for
// feature report 7, bounded by a one second timeout.
const (
	reportRequest   = 0x01
	reportValue     = 0x0307
	reportIndex     = 0x0002
	reportTimeoutMs = 1000
)

// driverState records what the host kernel driver was doing with an
// interface when a report read began.
type driverState int

const (
	driverNotBound driverState = iota
	driverBoundByOS
	driverDetached
)

// Device is one opened keypad. Report reads on a single Device are
// serialized; distinct Devices are independent and may be driven from
// separate goroutines. The Hub that produced a Device must outlive it.
type Device struct {
	dev       usbDevice
	handle    usbHandle
	options   Options
	canDetach bool
	logger    *logrus.Logger
	closed    int32 // atomic
	readLock  sync.Mutex
}

func (d *Device) Log(msg string) {
	if d.logger != nil {
		d.logger.Info(fmt.Sprintf("[falcon8] %s", msg))
	}
}

func (d *Device) Warn(msg string) {
	if d.logger != nil {
		d.logger.Warn(fmt.Sprintf("[falcon8] %s", msg))
	}
}

func (d *Device) Error(msg string) {
	if d.logger != nil {
		d.logger.Error(fmt.Sprintf("[falcon8] %s", msg))
	}
}

// Close releases the device handle. The device cannot be used afterwards.
func (d *Device) Close() error {
	atomic.StoreInt32(&d.closed, 1)
	return d.handle.Close()
}

// Report reads the status report into a fresh buffer of the configured
// report length and returns only the bytes the device actually sent.
func (d *Device) Report() ([]byte, error) {
	buf := make([]byte, d.options.ReportLength)
	n, err := d.ReadReport(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// ReadReport fetches the status report into buf and returns the number of
// bytes the device transferred, which may be fewer than len(buf). The
// sequence is: locate the configured endpoint, detach the kernel driver if
// it holds that endpoint's interface, claim the interface, issue the
// control transfer, release the claim, reattach the driver. Release and
// reattach run on every exit path once their acquisition succeeded, so a
// failed transfer never leaves the interface claimed or the driver
// detached. When cleanup itself fails after an earlier error, the earlier
// error wins and the cleanup failure is logged.
func (d *Device) ReadReport(buf []byte) (n int, err error) {
	if len(buf) == 0 {
		return 0, fmt.Errorf("falcon8: report buffer must be pre-sized to the expected report length, got 0 bytes")
	}
	if atomic.LoadInt32(&d.closed) == 1 {
		return 0, ErrDeviceClosed
	}

	d.readLock.Lock()
	defer d.readLock.Unlock()

	endpoints, err := d.Endpoints()
	if err != nil {
		return 0, err
	}
	if d.options.EndpointIndex < 0 || d.options.EndpointIndex >= len(endpoints) {
		return 0, ErrNoEndpoints
	}
	endpoint := endpoints[d.options.EndpointIndex]
	iface := int(endpoint.Interface)

	prior, err := d.detachIfBound(endpoint)
	if err != nil {
		return 0, err
	}
	defer func() {
		if rerr := d.reattachIfNeeded(endpoint, prior); rerr != nil {
			if err == nil {
				err = rerr
			} else {
				d.Error(fmt.Sprintf("reattach after failed read also failed, interface %d is left without its kernel driver: %v", iface, rerr))
			}
		}
	}()

	if err := d.claimInterface(iface); err != nil {
		return 0, err
	}
	defer func() {
		if rerr := d.releaseInterface(iface); rerr != nil {
			if err == nil {
				err = rerr
			} else {
				d.Error(fmt.Sprintf("release after failed read also failed, interface %d may be left claimed: %v", iface, rerr))
			}
		}
	}()

	if d.options.Debug {
		d.Log(fmt.Sprintf("reading report via endpoint %s", endpoint))
	}

	// Device-to-host | class | interface recipient, 0xa1 on the wire.
	requestType := byte(libusb.DeviceToHost) | byte(libusb.Class) | byte(libusb.InterfaceRecipient)
	n, terr := d.handle.ControlTransfer(requestType, reportRequest, reportValue, reportIndex, buf, len(buf), reportTimeoutMs)
	if terr != nil {
		if isDisconnectError(terr) {
			return 0, fmt.Errorf("%w: %w: %v", ErrTransfer, ErrDeviceDisconnected, terr)
		}
		return 0, fmt.Errorf("%w: %v", ErrTransfer, terr)
	}
	return n, nil
}

// claimInterface takes the interface for this process. It must succeed
// before any transfer is attempted.
func (d *Device) claimInterface(iface int) error {
	if err := d.handle.ClaimInterface(iface); err != nil {
		if isPermissionError(err) {
			return fmt.Errorf("%w: claiming interface %d: %v", ErrPermissionDenied, iface, err)
		}
		return fmt.Errorf("%w: claiming interface %d: %v", ErrDriver, iface, err)
	}
	return nil
}

// releaseInterface hands the interface back. It is attempted even when the
// transfer failed, so the interface is not left unavailable to the rest of
// the system.
func (d *Device) releaseInterface(iface int) error {
	if err := d.handle.ReleaseInterface(iface); err != nil {
		return fmt.Errorf("%w: releasing interface %d: %v", ErrDriver, iface, err)
	}
	return nil
}

// detachIfBound asks the kernel whether a driver holds the endpoint's
// interface and detaches it if so. A failed query is treated as "no
// driver" rather than escalated; a failed detach is a real error, usually
// meaning the device was unplugged.
func (d *Device) detachIfBound(endpoint Endpoint) (driverState, error) {
	if !d.canDetach {
		return driverNotBound, nil
	}

	iface := int(endpoint.Interface)
	active, err := d.handle.KernelDriverActive(iface)
	if err != nil {
		d.Log(fmt.Sprintf("kernel driver query failed on interface %d, assuming none: %v", iface, err))
		return driverNotBound, nil
	}
	if !active {
		return driverNotBound, nil
	}

	if err := d.handle.DetachKernelDriver(iface); err != nil {
		return driverBoundByOS, fmt.Errorf("%w: detaching kernel driver from interface %d: %v", ErrDriver, iface, err)
	}
	d.Log(fmt.Sprintf("detached kernel driver from interface %d", iface))
	return driverDetached, nil
}

// reattachIfNeeded re-binds the kernel driver and is a no-op unless
// detachIfBound actually detached it.
func (d *Device) reattachIfNeeded(endpoint Endpoint, prior driverState) error {
	if prior != driverDetached {
		return nil
	}

	iface := int(endpoint.Interface)
	if err := d.handle.AttachKernelDriver(iface); err != nil {
		return fmt.Errorf("%w: reattaching kernel driver to interface %d: %v", ErrDriver, iface, err)
	}
	d.Log(fmt.Sprintf("reattached kernel driver to interface %d", iface))
	return nil
}
