package rbac

import "strings"

// Matches reports whether a granted permission string covers the requested
// one. Two forms are recognised:
//
//   - exact: the grant equals the requested string;
//   - module wildcard: a grant ending in ".*" covers every action within that
//     module and only that module ("sales.*" covers "sales.view", never
//     "service.view").
//
// Comparison is case-sensitive and no whitespace normalisation is applied.
// A bare "*" is a literal grant, not a global wildcard: every module a role
// administers needs its own ".*" entry.
func Matches(grant, requested string) bool {
	if requested == "" {
		return false
	}
	if grant == requested {
		return true
	}
	module, ok := strings.CutSuffix(grant, ".*")
	if !ok {
		return false
	}
	return strings.HasPrefix(requested, module+".")
}

// MatchesAny reports whether any grant in the set covers the requested
// permission. Subsumption between grants ("sales.*" next to "sales.view") is
// resolved here at match time, never at aggregation time.
func MatchesAny(grants []string, requested string) bool {
	for _, grant := range grants {
		if Matches(grant, requested) {
			return true
		}
	}
	return false
}
