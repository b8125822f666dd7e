//go:build linux

package hider

import (
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// renameat2Missing is set once the kernel reports ENOSYS for renameat2.
var renameat2Missing atomic.Bool

// renameNoReplace renames oldPath to newPath, failing with EEXIST if newPath
// exists. Filesystems without RENAME_NOREPLACE support fall back to
// renameChecked.
func renameNoReplace(oldPath, newPath string) error {
	if renameat2Missing.Load() {
		return renameChecked(oldPath, newPath)
	}

	err := renameat2(oldPath, newPath)
	switch err {
	case nil:
		return nil
	case unix.ENOSYS:
		renameat2Missing.Store(true)
		return renameChecked(oldPath, newPath)
	case unix.EINVAL, unix.ENOTSUP:
		return renameChecked(oldPath, newPath)
	default:
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: err}
	}
}

func renameat2(oldPath, newPath string) error {
	for {
		err := unix.Renameat2(unix.AT_FDCWD, oldPath, unix.AT_FDCWD, newPath, unix.RENAME_NOREPLACE)
		if err != unix.EINTR {
			return err
		}
	}
}
