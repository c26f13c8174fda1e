package xcursor

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var defaultLibraryPaths = []string{
	"~/.icons",
	"/usr/share/icons",
	"/usr/share/pixmaps",
	"~/.cursors",
	"/usr/share/cursors/xorg-x11",
	"/usr/X11R6/lib/X11/icons",
}

func libraryPaths() []string {
	if v, ok := os.LookupEnv("XCURSOR_PATH"); ok {
		return filepath.SplitList(v)
	}

	v, ok := os.LookupEnv("XDG_DATA_HOME")
	if !ok || !filepath.IsAbs(v) {
		v = expandHome("~/.local/share")
	}

	paths := make([]string, 0, len(defaultLibraryPaths)+1)
	paths = append(paths, filepath.Join(v, "icons"))
	for _, p := range defaultLibraryPaths {
		paths = append(paths, expandHome(p))
	}
	return paths
}

// expandHome resolves a leading ~ against the user's home directory.
func expandHome(path string) string {
	after, ok := strings.CutPrefix(path, "~")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, after)
}

// Theme is a named set of cursors loaded at a common nominal size.
type Theme struct {
	Name    string
	Size    int
	Cursors map[string]*Cursor
}

// LoadTheme loads the named theme from the usual library paths,
// following theme inheritance. Cursors from inherited themes do not
// override those already loaded.
func LoadTheme(name string, size int) (*Theme, error) {
	if name == "" {
		name = "default"
	}

	t := Theme{
		Name:    name,
		Size:    size,
		Cursors: make(map[string]*Cursor),
	}
	return &t, t.load(name)
}

// Cursor returns the named cursor, or nil when the theme does not
// contain it.
func (t *Theme) Cursor(name string) *Cursor {
	return t.Cursors[name]
}

func (t *Theme) load(theme string) error {
	for _, path := range libraryPaths() {
		dir := filepath.Join(path, theme, "cursors")
		err := t.loadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load dir %q: %w", dir, err)
		}

		inherits, err := loadInherits(filepath.Join(path, theme, "index.theme"))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load inherited themes: %w", err)
		}
		for _, theme := range inherits {
			err := t.load(theme)
			if err != nil {
				return fmt.Errorf("load inherited theme %q: %w", theme, err)
			}
		}

		return nil
	}

	return fmt.Errorf("theme %q not found", theme)
}

func (t *Theme) loadDir(path string) error {
	dir, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	for _, ent := range dir {
		if _, ok := t.Cursors[ent.Name()]; ok {
			continue
		}
		if typ := ent.Type(); !typ.IsRegular() && (typ != fs.ModeSymlink) {
			continue
		}

		entpath := filepath.Join(path, ent.Name())
		cur, err := DecodeFile(entpath, t.Size)
		if err != nil {
			if errors.Is(err, ErrBadMagic) {
				continue
			}
			return fmt.Errorf("load %q: %w", entpath, err)
		}

		t.Cursors[ent.Name()] = cur
	}

	return nil
}

func loadInherits(index string) (inherits []string, err error) {
	file, err := os.Open(index)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	s := bufio.NewScanner(file)
	for s.Scan() {
		line := s.Text()
		if !strings.HasPrefix(line, "Inherits") {
			continue
		}

		_, after, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		inherits = strings.FieldsFunc(after, func(c rune) bool {
			return (c == ':') || (c == ',')
		})
		for i, v := range inherits {
			inherits[i] = strings.TrimSpace(v)
		}

		break
	}
	if err := s.Err(); err != nil {
		return inherits, fmt.Errorf("scan: %w", err)
	}

	return inherits, nil
}
