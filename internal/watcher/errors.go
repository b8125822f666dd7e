package watcher

import "errors"

var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyStarted  = errors.New("watcher already started")
	ErrNoSubscriptions = errors.New("no directory could be watched")
)
