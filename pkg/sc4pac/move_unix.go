//go:build !windows

package sc4pac

import (
	"errors"
	"syscall"
)

// isCrossDeviceError reports whether err is EXDEV, the error os.Rename
// returns when src and dst live on different filesystems or mount points,
// the case the publish step's staging-to-plugins move must fall back from.
func isCrossDeviceError(err error) bool {
	if err == nil {
		return false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EXDEV
	}
	return false
}
