package rules

import "strings"

// HiddenMarker is the name prefix of the dot naming convention.
const HiddenMarker = "."

// Matches reports whether e qualifies for hiding under cfg.
//
// An entry already in hidden form still matches: a dot-prefixed name is also
// compared with the marker removed, so ".secret.txt" matches the name
// "secret.txt". The hider then reports it as already hidden.
func Matches(e Entry, cfg *HideConfig) bool {
	if !cfg.Targets(e.Kind) {
		return false
	}
	if cfg.MatchesAll() {
		return true
	}

	if cfg.matchesName(cfg.fold(e.Name)) {
		return true
	}

	ext := strings.TrimPrefix(e.Extension, ".")
	if ext == "" {
		return false
	}
	_, ok := cfg.fileExtensions[cfg.fold(ext)]
	return ok
}

func (c *HideConfig) matchesName(name string) bool {
	if _, ok := c.fileNames[name]; ok {
		return true
	}
	visible, ok := strings.CutPrefix(name, HiddenMarker)
	if !ok || visible == "" {
		return false
	}
	_, ok = c.fileNames[visible]
	return ok
}
