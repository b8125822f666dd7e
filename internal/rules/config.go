package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Options is the raw, unvalidated input for a HideConfig.
type Options struct {
	Roots          []string
	FileNames      []string
	FileExtensions []string
	Kinds          []Kind
	Recursive      bool
	CaseSensitive  bool
	DryRun         bool
}

// HideConfig is the validated, immutable hide configuration. It is safe for
// concurrent reads; nothing mutates it after NewHideConfig returns.
type HideConfig struct {
	roots          []string
	fileNames      map[string]struct{}
	fileExtensions map[string]struct{}
	kinds          map[Kind]struct{}
	recursive      bool
	caseSensitive  bool
	dryRun         bool
}

// NewHideConfig validates opts and normalizes the name and extension sets.
// Every invalid root is reported in the returned error.
func NewHideConfig(opts Options) (*HideConfig, error) {
	roots, err := validateRoots(opts.Roots)
	if err != nil {
		return nil, err
	}

	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = AllKinds()
	}

	cfg := &HideConfig{
		roots:          roots,
		fileNames:      make(map[string]struct{}, len(opts.FileNames)),
		fileExtensions: make(map[string]struct{}, len(opts.FileExtensions)),
		kinds:          make(map[Kind]struct{}, len(kinds)),
		recursive:      opts.Recursive,
		caseSensitive:  opts.CaseSensitive,
		dryRun:         opts.DryRun,
	}

	for _, k := range kinds {
		if k != KindFile && k != KindDirectory {
			return nil, fmt.Errorf("%w: %v", ErrUnknownKind, k)
		}
		cfg.kinds[k] = struct{}{}
	}
	for _, name := range opts.FileNames {
		if name = strings.TrimSpace(name); name != "" {
			cfg.fileNames[cfg.fold(name)] = struct{}{}
		}
	}
	for _, ext := range opts.FileExtensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			cfg.fileExtensions[cfg.fold(ext)] = struct{}{}
		}
	}

	return cfg, nil
}

func validateRoots(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, ErrNoRoots
	}

	var result *multierror.Error
	seen := make(map[string]struct{}, len(raw))
	roots := make([]string, 0, len(raw))

	for _, root := range raw {
		abs, err := filepath.Abs(root)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", root, err))
			continue
		}
		if err := checkRoot(abs); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", root, err))
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		roots = append(roots, abs)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return roots, nil
}

func checkRoot(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrRootNotFound
	case err != nil:
		return fmt.Errorf("%w: %v", ErrRootInaccessible, err)
	case !info.IsDir():
		return ErrRootNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRootInaccessible, err)
	}
	return f.Close()
}

func (c *HideConfig) fold(s string) string {
	if c.caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// Roots returns a copy of the absolute root directories in input order.
func (c *HideConfig) Roots() []string {
	return append([]string(nil), c.roots...)
}

func (c *HideConfig) Recursive() bool     { return c.recursive }
func (c *HideConfig) CaseSensitive() bool { return c.caseSensitive }
func (c *HideConfig) DryRun() bool        { return c.dryRun }

// Targets reports whether entries of kind k may be hidden.
func (c *HideConfig) Targets(k Kind) bool {
	_, ok := c.kinds[k]
	return ok
}

// TargetKinds returns the target kinds in a stable order.
func (c *HideConfig) TargetKinds() []Kind {
	kinds := make([]Kind, 0, len(c.kinds))
	for _, k := range AllKinds() {
		if c.Targets(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// FileNames returns the normalized name set, sorted.
func (c *HideConfig) FileNames() []string {
	return sortedKeys(c.fileNames)
}

// FileExtensions returns the normalized extension set, sorted.
func (c *HideConfig) FileExtensions() []string {
	return sortedKeys(c.fileExtensions)
}

// MatchesAll reports whether no name or extension filter was given.
func (c *HideConfig) MatchesAll() bool {
	return len(c.fileNames) == 0 && len(c.fileExtensions) == 0
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
