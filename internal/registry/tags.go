package registry

import "strings"

// ExtractTags returns every tag used by servers, trimmed and deduplicated in
// first-seen order. Tags that are empty after trimming are dropped.
func ExtractTags(servers []Server) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, s := range servers {
		for _, t := range s.Tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// MergeTags returns the union of existing and imported. Existing tags keep
// their order; new tags follow in the order they appear. Nothing is removed.
func MergeTags(existing, imported []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(imported))
	out := make([]string, 0, len(existing)+len(imported))
	for _, list := range [][]string{existing, imported} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// normalizeTags trims, drops empties and deduplicates.
func normalizeTags(tags []string) []string {
	return ExtractTags([]Server{{Tags: tags}})
}
