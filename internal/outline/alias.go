package outline

import "strings"

// AliasFields holds the two alias sources a note's metadata may carry.
// Both are already flattened to plain strings.
type AliasFields struct {
	Alias   []string `json:"alias,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// Merged returns Alias followed by Aliases.
func (f AliasFields) Merged() []string {
	out := make([]string, 0, len(f.Alias)+len(f.Aliases))
	out = append(out, f.Alias...)
	return append(out, f.Aliases...)
}

// AliasLookup resolves an outline label to its note's alias fields.
// ok is false when the label does not resolve to a note.
type AliasLookup interface {
	Lookup(label string) (fields AliasFields, ok bool)
}

// LookupFunc adapts a function to AliasLookup.
type LookupFunc func(label string) (AliasFields, bool)

// Lookup calls f.
func (f LookupFunc) Lookup(label string) (AliasFields, bool) {
	return f(label)
}

// Annotate appends " (a1, a2, ...)" to every line whose label resolves to a
// note with aliases. Disabled annotation returns text unchanged.
func Annotate(text string, lookup AliasLookup, enabled bool) string {
	if !enabled || lookup == nil {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		_, label, _ := strings.Cut(line, Separator)
		if label == "" {
			continue
		}
		fields, ok := lookup.Lookup(label)
		if !ok {
			continue
		}
		if all := fields.Merged(); len(all) > 0 {
			lines[i] = line + " (" + strings.Join(all, ", ") + ")"
		}
	}
	return strings.Join(lines, "\n")
}
