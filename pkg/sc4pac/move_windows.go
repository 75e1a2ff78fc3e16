//go:build windows

package sc4pac

import (
	"errors"
	"syscall"
)

// errNotSameDevice is ERROR_NOT_SAME_DEVICE, raised when moving a file
// between drives on Windows.
const errNotSameDevice syscall.Errno = 0x11

// isCrossDeviceError reports whether err is ERROR_NOT_SAME_DEVICE.
func isCrossDeviceError(err error) bool {
	if err == nil {
		return false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == errNotSameDevice
	}
	return false
}
