package plan

import (
	"strconv"
	"strings"
)

// satisfies reports whether a version could lie inside a constraint.
// Comparisons truncate to the shorter version's precision, so a
// two-component target version such as "2.7" never falsely conflicts
// with a more precise bound such as ">=2.7.1". Clauses that cannot be
// understood count as satisfied.
func satisfies(version, constraint string) bool {
	for _, clause := range strings.Split(constraint, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" || strings.ContainsRune(clause, ' ') {
			continue
		}
		if !clauseHolds(version, clause) {
			return false
		}
	}
	return true
}

func clauseHolds(version, clause string) bool {
	for _, op := range []string{">=", "<=", "!=", "==", ">", "<"} {
		if !strings.HasPrefix(clause, op) {
			continue
		}
		bound := strings.TrimSpace(strings.TrimPrefix(clause, op))
		cmp := truncatedCompare(version, bound)
		switch op {
		case ">=", ">":
			return cmp >= 0
		case "<=", "<":
			return cmp <= 0
		case "==":
			return cmp == 0
		case "!=":
			return cmp != 0
		}
	}
	if strings.HasSuffix(clause, ".*") {
		return truncatedCompare(version, strings.TrimSuffix(clause, ".*")) == 0
	}
	return truncatedCompare(version, clause) == 0
}

// truncatedCompare compares two versions over their shared precision
// only: "2.7" and "2.7.14" compare equal.
func truncatedCompare(a, b string) int {
	as := normalizeVersion(a)
	bs := normalizeVersion(b)
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		if as[i] < bs[i] {
			return -1
		}
		if as[i] > bs[i] {
			return 1
		}
	}
	return 0
}

func compareVersions(a, b string) int {
	as := normalizeVersion(a)
	bs := normalizeVersion(b)
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// normalizeVersion converts a version string to integer components.
// Non-numeric trailers on a component are dropped: "1.16rc1" becomes
// [1, 16].
func normalizeVersion(v string) []int {
	v = strings.TrimSpace(v)
	if v == "" {
		return []int{0}
	}
	parts := strings.Split(v, ".")
	result := make([]int, 0, len(parts))
	for _, p := range parts {
		n, ok := leadingInt(p)
		if !ok {
			break
		}
		result = append(result, n)
	}
	if len(result) == 0 {
		return []int{0}
	}
	return result
}

func leadingInt(s string) (int, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// bumpVersion returns the smallest version above every release sharing
// the first n components of v: "1.16.5" bumped at one component is
// "2", at two components "1.17".
func bumpVersion(v string, n int) string {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if n < 1 {
		n = 1
	}
	if n > len(parts) {
		n = len(parts)
	}
	kept := make([]string, n)
	copy(kept, parts[:n])
	last, ok := leadingInt(kept[n-1])
	if !ok {
		last = 0
	}
	kept[n-1] = strconv.Itoa(last + 1)
	return strings.Join(kept, ".")
}
