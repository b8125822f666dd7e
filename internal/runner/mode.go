package runner

import "fmt"

// Mode selects how a run reacts to the filesystem.
type Mode uint8

const (
	// ModeImmediate sweeps the roots once.
	ModeImmediate Mode = iota + 1
	// ModeWatch hides entries as they appear until cancelled.
	ModeWatch
	// ModeImmediateThenWatch sweeps once, then keeps watching. The watch is
	// in place before the sweep starts so no change falls in between.
	ModeImmediateThenWatch
)

// ModeFromFlags maps the immediate and watch switches to a mode. With
// neither switch set the run is immediate.
func ModeFromFlags(immediate, watch bool) Mode {
	switch {
	case watch && immediate:
		return ModeImmediateThenWatch
	case watch:
		return ModeWatch
	default:
		return ModeImmediate
	}
}

func (m Mode) String() string {
	switch m {
	case ModeImmediate:
		return "immediate"
	case ModeWatch:
		return "watch"
	case ModeImmediateThenWatch:
		return "immediate+watch"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

func (m Mode) sweeps() bool {
	return m == ModeImmediate || m == ModeImmediateThenWatch
}

func (m Mode) watches() bool {
	return m == ModeWatch || m == ModeImmediateThenWatch
}
