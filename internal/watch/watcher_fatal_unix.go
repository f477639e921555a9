// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// fatalHint reports whether err means the notification backend is exhausted,
// and what the user can do about it. inotify fails this way when a large
// image folder exceeds the watch or descriptor limits.
func fatalHint(err error) (string, bool) {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return "raise fs.inotify.max_user_watches or watch a smaller folder", true
	case errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE):
		return "raise the open file limit (ulimit -n)", true
	}
	return "", false
}
