//go:build !linux

package hider

func renameNoReplace(oldPath, newPath string) error {
	return renameChecked(oldPath, newPath)
}
