package match

import "strings"

// Normalize lower-cases and trims a raw token. Empty or whitespace-only
// input becomes the empty string. Idempotent.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeAll normalizes every value and drops the empties.
func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// orderedSet collects normalized tokens, first occurrence winning. Insertion
// order is load-bearing for keyword priority, so a plain map will not do.
type orderedSet struct {
	seen map[string]struct{}
	out  []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (o *orderedSet) add(raw string) {
	v := Normalize(raw)
	if v == "" {
		return
	}
	if _, ok := o.seen[v]; ok {
		return
	}
	o.seen[v] = struct{}{}
	o.out = append(o.out, v)
}

func (o *orderedSet) values() []string {
	return o.out
}
