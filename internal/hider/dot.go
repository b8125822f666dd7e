package hider

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const marker = "."

// DotHider hides entries by prefixing their name with a dot.
type DotHider struct{}

func (DotHider) Hide(path string) (Result, error) {
	path = filepath.Clean(path)
	dir, name := filepath.Split(path)

	if IsHiddenName(name) {
		if _, err := os.Lstat(path); err != nil {
			return Result{}, wrapError("hide", path, err)
		}
		return Result{Status: AlreadyHidden, Path: path}, nil
	}

	target := filepath.Join(dir, marker+name)

	if _, err := os.Lstat(path); err != nil {
		// A previous call may already have renamed it.
		if errors.Is(err, fs.ErrNotExist) {
			if _, terr := os.Lstat(target); terr == nil {
				return Result{Status: AlreadyHidden, Path: target}, nil
			}
		}
		return Result{}, wrapError("hide", path, err)
	}

	if err := renameNoReplace(path, target); err != nil {
		return Result{}, wrapError("rename", path, err)
	}
	return Result{Status: Hidden, Path: target}, nil
}

// renameChecked refuses to replace an existing target. The check and the
// rename are not atomic.
func renameChecked(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(oldPath, newPath)
}
