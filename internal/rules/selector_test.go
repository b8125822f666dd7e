package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustConfig(t *testing.T, opts Options) *HideConfig {
	t.Helper()
	if len(opts.Roots) == 0 {
		opts.Roots = []string{t.TempDir()}
	}
	cfg, err := NewHideConfig(opts)
	require.NoError(t, err)
	return cfg
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		entry    Entry
		expected bool
	}{
		{
			name:     "Empty filters match any targeted file",
			opts:     Options{},
			entry:    NewEntry("/d/anything.bin", KindFile),
			expected: true,
		},
		{
			name:     "Empty filters match any targeted directory",
			opts:     Options{},
			entry:    NewEntry("/d/sub", KindDirectory),
			expected: true,
		},
		{
			name:     "Kind not targeted",
			opts:     Options{Kinds: []Kind{KindFile}},
			entry:    NewEntry("/d/sub", KindDirectory),
			expected: false,
		},
		{
			name:     "Exact name",
			opts:     Options{FileNames: []string{"secret.txt"}},
			entry:    NewEntry("/d/secret.txt", KindFile),
			expected: true,
		},
		{
			name:     "Name mismatch",
			opts:     Options{FileNames: []string{"secret.txt"}},
			entry:    NewEntry("/d/public.txt", KindFile),
			expected: false,
		},
		{
			name:     "Extension without dot",
			opts:     Options{FileExtensions: []string{"txt"}},
			entry:    NewEntry("/d/a.txt", KindFile),
			expected: true,
		},
		{
			name:     "Extension with dot",
			opts:     Options{FileExtensions: []string{".log"}},
			entry:    NewEntry("/d/b.log", KindFile),
			expected: true,
		},
		{
			name:     "Extension applies to directories",
			opts:     Options{FileExtensions: []string{"d"}},
			entry:    NewEntry("/d/conf.d", KindDirectory),
			expected: true,
		},
		{
			name:     "Entry without extension",
			opts:     Options{FileExtensions: []string{"txt"}},
			entry:    NewEntry("/d/Makefile", KindFile),
			expected: false,
		},
		{
			name:     "Case insensitive name",
			opts:     Options{FileNames: []string{"Secret.TXT"}},
			entry:    NewEntry("/d/SECRET.txt", KindFile),
			expected: true,
		},
		{
			name:     "Case insensitive extension",
			opts:     Options{FileExtensions: []string{"TXT"}},
			entry:    NewEntry("/d/a.TxT", KindFile),
			expected: true,
		},
		{
			name:     "Case sensitive name mismatch",
			opts:     Options{FileNames: []string{"secret.txt"}, CaseSensitive: true},
			entry:    NewEntry("/d/Secret.txt", KindFile),
			expected: false,
		},
		{
			name:     "Case sensitive extension mismatch",
			opts:     Options{FileExtensions: []string{"txt"}, CaseSensitive: true},
			entry:    NewEntry("/d/a.TXT", KindFile),
			expected: false,
		},
		{
			name:     "Hidden form of a listed name",
			opts:     Options{FileNames: []string{"secret.txt"}},
			entry:    NewEntry("/d/.secret.txt", KindFile),
			expected: true,
		},
		{
			name:     "Hidden form of a listed extension",
			opts:     Options{FileExtensions: []string{"txt"}},
			entry:    NewEntry("/d/.a.txt", KindFile),
			expected: true,
		},
		{
			name:     "Dotfile has no extension",
			opts:     Options{FileExtensions: []string{"bashrc"}},
			entry:    NewEntry("/d/.bashrc", KindFile),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mustConfig(t, tt.opts)
			assert.Equal(t, tt.expected, Matches(tt.entry, cfg))
		})
	}
}

func TestMatches_EmptyFiltersMatchEveryTargetedKind(t *testing.T) {
	names := []string{"a", "a.txt", ".hidden", "UPPER.LOG", "no-ext", "x.tar.gz"}

	for _, kinds := range [][]Kind{{KindFile}, {KindDirectory}, AllKinds()} {
		cfg := mustConfig(t, Options{Kinds: kinds})
		for _, name := range names {
			for _, k := range AllKinds() {
				e := NewEntry(filepath.Join("/root", name), k)
				assert.Equal(t, cfg.Targets(k), Matches(e, cfg), "name=%s kind=%s", name, k)
			}
		}
	}
}

func TestMatches_CaseInvariantWhenInsensitive(t *testing.T) {
	cfg := mustConfig(t, Options{
		FileNames:      []string{"Secret.txt"},
		FileExtensions: []string{"Log"},
	})

	names := []string{"secret.txt", "app.log", "other.bin", "notes.TXT"}
	for _, name := range names {
		want := Matches(NewEntry("/d/"+name, KindFile), cfg)
		for _, variant := range []string{strings.ToUpper(name), strings.ToLower(name), strings.ToUpper(name[:1]) + name[1:]} {
			assert.Equal(t, want, Matches(NewEntry("/d/"+variant, KindFile), cfg), variant)
		}
	}
}

func TestNewEntry(t *testing.T) {
	tests := []struct {
		path string
		name string
		ext  string
	}{
		{"/d/a.txt", "a.txt", "txt"},
		{"/d/archive.tar.gz", "archive.tar.gz", "gz"},
		{"/d/.bashrc", ".bashrc", ""},
		{"/d/.secret.txt", ".secret.txt", "txt"},
		{"/d/Makefile", "Makefile", ""},
		{"/d/trailing.", "trailing.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e := NewEntry(tt.path, KindFile)
			assert.Equal(t, tt.name, e.Name)
			assert.Equal(t, tt.ext, e.Extension)
			assert.Equal(t, tt.path, e.Path)
		})
	}
}

func TestNewHideConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	t.Run("Normalizes sets", func(t *testing.T) {
		cfg, err := NewHideConfig(Options{
			Roots:          []string{dir, dir},
			FileNames:      []string{"A.TXT", " ", "b"},
			FileExtensions: []string{".LOG", "txt", "."},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{dir}, cfg.Roots())
		assert.Equal(t, []string{"a.txt", "b"}, cfg.FileNames())
		assert.Equal(t, []string{"log", "txt"}, cfg.FileExtensions())
		assert.Equal(t, AllKinds(), cfg.TargetKinds())
	})

	t.Run("Keeps case when sensitive", func(t *testing.T) {
		cfg, err := NewHideConfig(Options{
			Roots:         []string{dir},
			FileNames:     []string{"A.TXT"},
			CaseSensitive: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"A.TXT"}, cfg.FileNames())
	})

	t.Run("No roots", func(t *testing.T) {
		_, err := NewHideConfig(Options{})
		assert.ErrorIs(t, err, ErrNoRoots)
	})

	t.Run("Reports every bad root", func(t *testing.T) {
		_, err := NewHideConfig(Options{
			Roots: []string{filepath.Join(dir, "missing"), file, dir},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRootNotFound)
		assert.ErrorIs(t, err, ErrRootNotDirectory)
	})

	t.Run("Rejects unknown kind", func(t *testing.T) {
		_, err := NewHideConfig(Options{Roots: []string{dir}, Kinds: []Kind{Kind(9)}})
		assert.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("Roots are absolute", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		cfg, err := NewHideConfig(Options{Roots: []string{"."}})
		require.NoError(t, err)
		assert.Equal(t, []string{wd}, cfg.Roots())
	})
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"file", "FILE", "f", "files"} {
		k, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, KindFile, k)
	}
	for _, s := range []string{"directory", "dir", "d", "Directories"} {
		k, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, KindDirectory, k)
	}

	_, err := ParseKind("socket")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
