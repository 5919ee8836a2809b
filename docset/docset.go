// Package docset enumerates and loads candidate documents from a directory.
package docset

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	keysync "github.com/reoring/keysync"
)

// Dir is a directory of candidate documents.
type Dir struct {
	// Dir is the directory that is searched.
	Dir string
	// Template is the path of the template document. It is never a candidate,
	// and its extension is the default for Extensions.
	Template string
	// Recursive descends into subdirectories.
	Recursive bool
	// Extensions selects candidate files, e.g. ".json". Matching ignores case.
	Extensions []string
	// Exclude holds doublestar patterns matched against candidate IDs.
	Exclude []string
	// Skip lists further files that are never candidates (the config file).
	Skip []string
	// LoadOpt is applied to every candidate.
	LoadOpt keysync.LoadOpt
}

// Candidates lists the IDs of candidate documents: slash-separated paths
// relative to d.Dir, sorted.
func (d *Dir) Candidates(ctx context.Context) ([]string, error) {
	for _, pat := range d.Exclude {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pat)
		}
	}
	root := d.root()
	skip := d.skipSet()
	exts := d.extensions()

	var ids []string
	err := filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if de.IsDir() {
			if path != root && !d.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !de.Type().IsRegular() || !hasExt(de.Name(), exts) {
			return nil
		}
		if skip[absPath(path)] {
			return nil
		}
		id, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		id = filepath.ToSlash(id)
		if d.excluded(id) {
			return nil
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Load reads and decodes the candidate with the given ID.
func (d *Dir) Load(ctx context.Context, id string) (keysync.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(d.Path(id), d.LoadOpt)
}

// Path returns the file path of a candidate ID.
func (d *Dir) Path(id string) string {
	return filepath.Join(d.root(), filepath.FromSlash(id))
}

func (d *Dir) root() string {
	if d.Dir == "" {
		return "."
	}
	return filepath.Clean(d.Dir)
}

func (d *Dir) excluded(id string) bool {
	for _, pat := range d.Exclude {
		if ok, err := doublestar.Match(pat, id); err == nil && ok {
			return true
		}
	}
	return false
}

func (d *Dir) skipSet() map[string]bool {
	set := make(map[string]bool, len(d.Skip)+1)
	if d.Template != "" {
		set[absPath(d.Template)] = true
	}
	for _, p := range d.Skip {
		if p != "" {
			set[absPath(p)] = true
		}
	}
	return set
}

// extensions returns the normalized extension set. YAML's two spellings are
// treated as one format.
func (d *Dir) extensions() []string {
	src := d.Extensions
	if len(src) == 0 {
		ext := filepath.Ext(d.Template)
		if ext == "" {
			ext = ".json"
		}
		src = []string{ext}
	}
	out := make([]string, 0, len(src)+1)
	for _, e := range src {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
		if len(d.Extensions) == 0 {
			switch e {
			case ".yaml":
				out = append(out, ".yml")
			case ".yml":
				out = append(out, ".yaml")
			}
		}
	}
	return out
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
