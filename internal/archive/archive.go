// Package archive stores fetched page snapshots as "{title}_{revid}.md"
// files, one subdirectory per entity kind. The filename carries the revision
// so rebuilds can pick the newest snapshot per page without a catalog.
package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/wikistruct/internal/structurer"
)

type Archive struct {
	dir string
}

func New(dir string) *Archive {
	return &Archive{dir: dir}
}

// Path returns the snapshot path for a page of a kind at a revision.
func (a *Archive) Path(kind, title string, revid int64) string {
	return filepath.Join(a.dir, kind, fmt.Sprintf("%s_%d.md", title, revid))
}

// Has reports whether the snapshot for this revision already exists.
func (a *Archive) Has(kind, title string, revid int64) bool {
	_, err := os.Stat(a.Path(kind, title, revid))
	return err == nil
}

// Save writes a snapshot, creating the kind directory on first use.
func (a *Archive) Save(kind, title string, revid int64, markdown []byte) error {
	if err := os.MkdirAll(filepath.Join(a.dir, kind), 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	if err := os.WriteFile(a.Path(kind, title, revid), markdown, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Read returns the snapshot contents for a page at a revision.
func (a *Archive) Read(kind, title string, revid int64) ([]byte, error) {
	return os.ReadFile(a.Path(kind, title, revid))
}

// Latest maps each archived page title of one kind to the full path of its
// newest-revision snapshot. Other kinds' snapshots are never visible. A
// missing archive directory is an empty result, not an error.
func (a *Archive) Latest(kind string, log *slog.Logger) (map[string]string, error) {
	kindDir := filepath.Join(a.dir, kind)
	dirents, err := os.ReadDir(kindDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read archive dir: %w", err)
	}

	var names []string
	for _, d := range dirents {
		if !d.IsDir() {
			names = append(names, d.Name())
		}
	}

	latest := structurer.SelectLatest(names, log)
	paths := make(map[string]string, len(latest))
	for title, fn := range latest {
		paths[title] = filepath.Join(kindDir, fn)
	}
	return paths, nil
}
