// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes that leave ReadDirectoryChangesW unusable.
const (
	errTooManyOpenFiles = syscall.Errno(4)
	errInvalidHandle    = syscall.Errno(6)
	errNotEnoughMemory  = syscall.Errno(8)
)

// fatalHint reports whether err means the watch handle is gone, and what the
// user can do about it.
func fatalHint(err error) (string, bool) {
	switch {
	case errors.Is(err, errInvalidHandle):
		return "the watched folder was removed or its drive disconnected", true
	case errors.Is(err, errTooManyOpenFiles), errors.Is(err, errNotEnoughMemory):
		return "close other programs or watch a smaller folder", true
	}
	return "", false
}
