//go:build windows

package hider

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

func newPlatformHider() Hider {
	return AttributeHider{}
}

// AttributeHider hides entries by setting FILE_ATTRIBUTE_HIDDEN.
type AttributeHider struct{}

func (AttributeHider) Hide(path string) (Result, error) {
	path = filepath.Clean(path)

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return Result{}, &Error{Op: "hide", Path: path, Kind: ErrHideFailed, Err: err}
	}

	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return Result{}, wrapError("hide", path, err)
	}
	if attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0 {
		return Result{Status: AlreadyHidden, Path: path}, nil
	}

	if err := windows.SetFileAttributes(p, attrs|windows.FILE_ATTRIBUTE_HIDDEN); err != nil {
		return Result{}, wrapError("hide", path, err)
	}
	return Result{Status: Hidden, Path: path}, nil
}
