// Package parser extracts frontmatter, wikilinks, aliases, and hierarchy fields from Markdown content.
package parser

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ooker777/breadcrumbs/internal/graph"
)

var (
	wikilinkRe    = regexp.MustCompile(`\[\[(.*?)\]\]`)
	tagRe         = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
	inlineFieldRe = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z][A-Za-z0-9_-]*)::[ \t]*(.+)$`)
)

// Fields names the frontmatter and inline keys that declare hierarchy edges.
type Fields struct {
	Up   []string `yaml:"up" toml:"up"`
	Down []string `yaml:"down" toml:"down"`
}

// DefaultFields returns the stock hierarchy field names.
func DefaultFields() Fields {
	return Fields{
		Up:   []string{"up", "parent"},
		Down: []string{"down", "child"},
	}
}

// direction maps a key to its hierarchy direction.
func (f Fields) direction(key string) (graph.Direction, bool) {
	for _, k := range f.Up {
		if k == key {
			return graph.Up, true
		}
	}
	for _, k := range f.Down {
		if k == key {
			return graph.Down, true
		}
	}
	return "", false
}

// HierarchyLink is one parent or child declared by a note.
type HierarchyLink struct {
	Target string
	Dir    graph.Direction
}

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Links       []string
	Tags        []string
	Title       string
	Alias       []string
	Aliases     []string
	Hierarchy   []HierarchyLink
}

// Parse extracts frontmatter, body, wikilinks, tags, aliases, and hierarchy
// links from raw Markdown bytes.
func Parse(data []byte, fields Fields) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Links:       extractLinks(body),
		Tags:        extractTags(body, fm),
		Title:       deriveTitle(fm, body),
		Alias:       flattenStrings(fm["alias"]),
		Aliases:     flattenStrings(fm["aliases"]),
		Hierarchy:   extractHierarchy(fm, body, fields),
	}, nil
}

// NameFromPath returns the note name of a vault path: its base name without
// the .md extension.
func NameFromPath(p string) string {
	return strings.TrimSuffix(path.Base(strings.ReplaceAll(p, "\\", "/")), ".md")
}

// LinkPath strips wiki brackets, display text after "|", and heading anchors
// after "#" from a link, keeping any folder prefix.
func LinkPath(link string) string {
	s := strings.TrimSpace(link)
	s = strings.TrimPrefix(s, "[[")
	s = strings.TrimSuffix(s, "]]")
	if i := strings.Index(s, "|"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// NoteName normalises a link or label to a note name: the LinkPath without
// folders or the .md extension.
func NoteName(link string) string {
	s := LinkPath(link)
	if s == "" {
		return ""
	}
	return NameFromPath(s)
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter: everything is body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML is not fatal; the note is read as body only.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// extractLinks returns deduplicated wikilink targets, normalising aliases.
func extractLinks(body string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := m[1]
		if i := strings.Index(target, "|"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// extractTags collects #tags from body and from the frontmatter "tags" field.
func extractTags(body string, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, t := range flattenStrings(fm["tags"]) {
		add(t)
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// extractHierarchy reads hierarchy links from frontmatter fields (up fields
// first, then down fields, in configured order) followed by inline
// "key:: value" fields in body order.
func extractHierarchy(fm map[string]interface{}, body string, fields Fields) []HierarchyLink {
	seen := make(map[HierarchyLink]struct{})
	var out []HierarchyLink
	add := func(raw string, dir graph.Direction) {
		for _, target := range linkTargets(raw) {
			l := HierarchyLink{Target: target, Dir: dir}
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}

	for _, group := range []struct {
		keys []string
		dir  graph.Direction
	}{{fields.Up, graph.Up}, {fields.Down, graph.Down}} {
		for _, key := range group.keys {
			for _, v := range flattenStrings(fm[key]) {
				add(v, group.dir)
			}
		}
	}

	for _, m := range inlineFieldRe.FindAllStringSubmatch(body, -1) {
		if dir, ok := fields.direction(m[1]); ok {
			add(m[2], dir)
		}
	}
	return out
}

// linkTargets returns the note names referenced by a field value: every
// [[wikilink]] in it, or the whole value as a bare name when it has none.
func linkTargets(raw string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		if name := NoteName(raw); name != "" {
			return []string{name}
		}
		return nil
	}
	var out []string
	for _, m := range matches {
		if name := NoteName(m[1]); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// flattenStrings flattens a YAML value of any nesting into trimmed, non-empty
// strings. Scalars that are not strings are formatted with fmt.
func flattenStrings(v interface{}) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return []string{s}
		}
		return nil
	case []interface{}:
		var out []string
		for _, item := range x {
			out = append(out, flattenStrings(item)...)
		}
		return out
	default:
		return []string{fmt.Sprint(x)}
	}
}
