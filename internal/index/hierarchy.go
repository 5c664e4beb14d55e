package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ooker777/breadcrumbs/internal/apperr"
	"github.com/ooker777/breadcrumbs/internal/graph"
	"github.com/ooker777/breadcrumbs/internal/outline"
	"github.com/ooker777/breadcrumbs/internal/parser"
)

// NoteNames returns the name of every indexed note in path order.
func (db *DB) NoteNames() ([]string, error) {
	rows, err := db.conn.Query(`SELECT name FROM notes ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: note names: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// HierarchyEdges returns the declared up/down links as edges between note
// names, ordered by source path and then by declaration order.
func (db *DB) HierarchyEdges() ([]graph.Edge, error) {
	rows, err := db.conn.Query(`
		SELECT n.name, l.target, l.type
		FROM links l
		JOIN notes n ON n.path = l.source
		WHERE l.type IN (?, ?)
		ORDER BY n.path, l.rowid
	`, LinkUp, LinkDown)
	if err != nil {
		return nil, fmt.Errorf("index: hierarchy edges: %w", err)
	}
	defer rows.Close()

	var out []graph.Edge
	for rows.Next() {
		var e graph.Edge
		var dir string
		if err := rows.Scan(&e.Source, &e.Target, &dir); err != nil {
			return nil, err
		}
		e.Dir = graph.Direction(dir)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Hierarchy loads the declared (not yet closed) hierarchy graph.
func (db *DB) Hierarchy() (*graph.Hierarchy, error) {
	names, err := db.NoteNames()
	if err != nil {
		return nil, err
	}
	edges, err := db.HierarchyEdges()
	if err != nil {
		return nil, err
	}
	h := graph.New()
	for _, n := range names {
		h.AddNode(n)
	}
	for _, e := range edges {
		h.AddEdge(e.Source, e.Target, e.Dir)
	}
	return h, nil
}

// Resolve finds the note a link or outline label points to. A folder-qualified
// link matches by path first; otherwise the first note with that name in path
// order wins.
func (db *DB) Resolve(link string) (*NoteRow, error) {
	lp := parser.LinkPath(link)
	name := parser.NoteName(link)
	if name == "" {
		return nil, apperr.ErrNotFound
	}
	path := strings.TrimSuffix(lp, ".md") + ".md"

	row := db.conn.QueryRow(`
		SELECT `+noteColumns+`
		FROM notes
		WHERE path = ? OR name = ?
		ORDER BY path = ? DESC, path
		LIMIT 1
	`, path, name, path)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: resolve %q: %w", link, err)
	}
	return n, nil
}

// Lookup resolves an outline label to its note's alias fields.
// It satisfies outline.AliasLookup.
func (db *DB) Lookup(label string) (outline.AliasFields, bool) {
	n, err := db.Resolve(label)
	if err != nil {
		return outline.AliasFields{}, false
	}
	return outline.AliasFields{Alias: n.Alias, Aliases: n.Aliases}, true
}
