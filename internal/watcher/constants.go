package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounce  = 300 * time.Millisecond
	DefaultQueueSize = 256

	// minSuppressTTL is the shortest time a suppressed path stays suppressed.
	minSuppressTTL = 2 * time.Second
)

// watchedOps are the fsnotify operations that become ChangeEvents. Chmod is
// metadata only and is never one of them.
var watchedOps = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove
