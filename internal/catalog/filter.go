package catalog

import "strings"

// Filter returns the playable records matching the free-text query and the
// region constraint. The query is matched case-insensitively against the
// concatenated name, route, region, bridge and border fields; the region, when
// set, must match exactly. Records without a derivable numeric id never pass.
//
// Filter is pure and idempotent: filtering its own output with the same
// arguments yields the same set.
func Filter(cams []Camera, query, region string) []Camera {
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]Camera, 0, len(cams))
	for _, c := range cams {
		if !c.Playable() {
			continue
		}
		if region != "" && c.Region != region {
			continue
		}
		if needle != "" && !strings.Contains(haystack(c), needle) {
			continue
		}
		out = append(out, c)
	}
	return out
}
