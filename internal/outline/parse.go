package outline

import "strings"

// LinePair is one outline line split at its first Separator.
type LinePair struct {
	Prefix string `json:"prefix"`
	Label  string `json:"label"`
}

// Depth converts the prefix back into an indentation depth.
func (p LinePair) Depth() int {
	return len(p.Prefix) / len(Indent)
}

// Parse splits text into prefix/label pairs in line order. Lines with an empty
// label, including lines without a separator, are dropped. flattenPrefix
// clears every prefix.
func Parse(text string, flattenPrefix bool) []LinePair {
	var out []LinePair
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		prefix, label, _ := strings.Cut(line, Separator)
		if label == "" {
			continue
		}
		if flattenPrefix {
			prefix = ""
		}
		out = append(out, LinePair{Prefix: prefix, Label: label})
	}
	return out
}
