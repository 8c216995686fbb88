// Package safety provides filtering, confirmation, and audit logging for
// destructive or sensitive benchmark operations.
package safety

import "path/filepath"

// Filter controls which volumes may be listed and benchmarked, using an
// allowlist and a denylist of mount path patterns. Glob patterns (as
// understood by filepath.Match) are supported in both lists.
//
// Rules:
//   - If both lists are empty (or nil), every volume is allowed.
//   - Denylist always takes priority over the allowlist.
//   - If a non-empty allowlist is present, a mount path must match at least
//     one allowlist pattern to be permitted (after the denylist check).
type Filter struct {
	allowlist []string
	denylist  []string
}

// NewFilter constructs a Filter from the provided allowlist and denylist
// pattern slices. Either or both may be nil or empty.
func NewFilter(allowlist, denylist []string) *Filter {
	return &Filter{
		allowlist: allowlist,
		denylist:  denylist,
	}
}

// IsAllowed reports whether the given mount path is permitted by this filter.
func (f *Filter) IsAllowed(mountPath string) bool {
	for _, pattern := range f.denylist {
		if matchGlob(pattern, mountPath) {
			return false
		}
	}

	if len(f.allowlist) == 0 {
		return true
	}

	for _, pattern := range f.allowlist {
		if matchGlob(pattern, mountPath) {
			return true
		}
	}

	return false
}

// matchGlob returns true when name matches the given glob pattern.
// filepath.Match errors (malformed patterns) are treated as non-matching.
func matchGlob(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		return false
	}
	return matched
}
