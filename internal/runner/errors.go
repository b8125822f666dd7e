package runner

import "errors"

var ErrUnknownMode = errors.New("unknown mode")
