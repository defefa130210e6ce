package catalog

import "strings"

// ParseListIDs splits a comma separated list parameter into list identifiers.
// Whitespace is trimmed, empty entries are discarded and repeats keep their first
// position.
func ParseListIDs(raw string) []string {
	return dedupeListIDs(strings.Split(raw, ","))
}

func dedupeListIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
