package falcon8

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when enumeration opened zero matching devices.
var ErrNotFound = errors.New("falcon8: no matching device found")

// ErrDeviceUnavailable is returned when a device yields no configuration
// descriptor, usually because it is gone or half-enumerated.
var ErrDeviceUnavailable = errors.New("falcon8: device configuration unavailable")

// ErrNoEndpoints is returned when the configured endpoint index does not
// exist in the walked configuration descriptor.
var ErrNoEndpoints = errors.New("falcon8: no matching endpoint in configuration descriptor")

// ErrDriver is returned when a kernel-driver detach/reattach or an
// interface claim/release fails.
var ErrDriver = errors.New("falcon8: kernel driver operation failed")

// ErrTransfer is returned when the report control transfer fails or times
// out.
var ErrTransfer = errors.New("falcon8: control transfer failed")

// ErrPermissionDenied is returned when the operating system refuses access
// to the device or its interface.
var ErrPermissionDenied = errors.New("falcon8: permission denied by operating system")

// ErrDeviceClosed is returned for operations on a device that was already
// closed.
var ErrDeviceClosed = errors.New("falcon8: device closed")

// ErrDeviceDisconnected is returned when the device disappeared mid
// operation.
var ErrDeviceDisconnected = errors.New("falcon8: device disconnected")

// isPermissionError matches the access-denied variants libusb reports,
// whether the message carries the symbolic name or the strerror text.
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "access")
}

// isDisconnectError matches the errors libusb reports once the device is
// physically gone.
func isDisconnectError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"no device", "no_device", "no such device", "disconnected"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
