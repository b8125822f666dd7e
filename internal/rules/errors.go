package rules

import "errors"

var (
	ErrNoRoots          = errors.New("no root directories given")
	ErrRootNotFound     = errors.New("root does not exist")
	ErrRootNotDirectory = errors.New("root is not a directory")
	ErrRootInaccessible = errors.New("root is not accessible")
	ErrUnknownKind      = errors.New("unknown entry kind")
)
