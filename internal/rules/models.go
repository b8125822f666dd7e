package rules

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the kind of a filesystem entry a rule can target.
type Kind uint8

const (
	KindFile Kind = iota + 1
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind accepts the spellings used on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "files", "f":
		return KindFile, nil
	case "directory", "directories", "dir", "d":
		return KindDirectory, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// AllKinds is the default target set.
func AllKinds() []Kind {
	return []Kind{KindFile, KindDirectory}
}

// Entry is a filesystem object observed during a sweep or a watch event.
type Entry struct {
	Path      string
	Name      string
	Extension string // without the leading dot, empty when the name has none
	Kind      Kind
}

// NewEntry derives the name and extension from path.
func NewEntry(path string, kind Kind) Entry {
	name := filepath.Base(path)
	return Entry{
		Path:      path,
		Name:      name,
		Extension: extension(name),
		Kind:      kind,
	}
}

// extension returns the text after the last dot of name. A name whose only
// dot is the leading one (".bashrc") has no extension.
func extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}
