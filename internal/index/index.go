package index

import (
	"github.com/ooker777/breadcrumbs/internal/graph"
	"github.com/ooker777/breadcrumbs/internal/outline"
)

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type NoteIndex interface {
	UpsertNote(n NoteRow, links []Link) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	GetNote(path string) (*NoteRow, error)
	Backlinks(target string) ([]string, error)
	Hierarchy() (*graph.Hierarchy, error)
	Resolve(link string) (*NoteRow, error)
	Close() error
	outline.AliasLookup
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
