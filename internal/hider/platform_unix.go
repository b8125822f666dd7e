//go:build !windows

package hider

func newPlatformHider() Hider {
	return DotHider{}
}
