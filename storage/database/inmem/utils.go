package inmemdb

import (
	"strings"
	"time"
)

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func compareStrings(a, b string) int {
	return strings.Compare(a, b)
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// compareTimePtrs sorts nil first.
func compareTimePtrs(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareTimes(*a, *b)
}

func derefInt(n *int) int {
	if n == nil {
		return -1
	}
	return *n
}

// identityColumns allows every key of m as an ordering field.
func identityColumns[T any](m map[string]T) map[string]string {
	cols := make(map[string]string, len(m))
	for k := range m {
		cols[k] = k
	}
	return cols
}

// containsFold reports whether substr is within s, case-insensitively. substr must be lower case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
