package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/wikistruct/internal/blocktree"
)

// Parser converts raw document bytes into a top-level block-node sequence.
type Parser interface {
	Parse(r io.Reader, filename string) ([]*blocktree.Node, error)
}

// ForFile returns the appropriate parser for a filename. Snapshots are
// always markdown; anything else is rejected.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}
