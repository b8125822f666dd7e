package hider

import "errors"

var (
	ErrNameCollision    = errors.New("hidden name already exists")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("entry not found")
	ErrHideFailed       = errors.New("hide failed")
)
