// Package hider implements the platform hide primitive: prefixing the name
// with a dot on POSIX systems, setting the hidden attribute on Windows.
package hider

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Status is the successful result of a hide operation.
type Status uint8

const (
	Hidden Status = iota + 1
	AlreadyHidden
)

func (s Status) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case AlreadyHidden:
		return "already hidden"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Result describes a successful hide. Path is where the entry lives
// afterwards; it differs from the input only under the dot convention.
type Result struct {
	Status Status
	Path   string
}

// Hider hides a single filesystem entry. Implementations are idempotent:
// hiding an entry that is already hidden reports AlreadyHidden.
type Hider interface {
	Hide(path string) (Result, error)
}

// HiderFunc adapts a function to the Hider interface.
type HiderFunc func(path string) (Result, error)

func (f HiderFunc) Hide(path string) (Result, error) {
	return f(path)
}

// New returns the hider for the current platform.
func New() Hider {
	return newPlatformHider()
}

// IsHiddenName reports whether name follows the dot convention. "." and
// ".." are never hidden.
func IsHiddenName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// Error is a failed hide. It matches both its Kind sentinel and the
// underlying cause with errors.Is.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// wrapError classifies an OS error into one of the package sentinels.
func wrapError(op, path string, err error) error {
	kind := ErrHideFailed
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	case errors.Is(err, fs.ErrExist):
		kind = ErrNameCollision
	}
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}
