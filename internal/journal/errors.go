package journal

import "errors"

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrBucketNotFound = errors.New("bucket not found")
	ErrNilDB          = errors.New("database connection is nil")
	ErrRunFinished    = errors.New("run already finished")
)
