package filesystem

import (
	"path/filepath"

	"github.com/groan-lab/groan/internal/core/title"
)

// PathLocator places one file per title in Dir, named by the normalized title.
// Example: PathLocator{Dir: "revisions", Ext: ".json"}.Locate("Ada Lovelace") → "revisions/Ada_Lovelace.json"
type PathLocator struct {
	Dir string
	Ext string
}

// Locate returns the file path for t.
func (l PathLocator) Locate(t string) string {
	return filepath.Join(l.Dir, title.Normalize(t)+l.Ext)
}
