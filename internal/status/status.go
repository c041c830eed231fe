// Package status classifies crawl status keys into coarse categories and
// defines the order in which status buckets are reported.
package status

import (
	"sort"
	"strconv"
	"strings"
)

// Unresponsive is the status key recorded when no HTTP response was obtained.
const Unresponsive = "Host did not respond"

// Category is a three-way grouping of a status key.
type Category string

// Supported categories.
const (
	OK       Category = "ok"
	Redirect Category = "redirect"
	Error    Category = "error"
)

// Classify groups a status key by its leading digit. Any key that does not
// start with 2 or 3, including Unresponsive and the empty string, is an Error.
func Classify(code string) Category {
	switch {
	case strings.HasPrefix(code, "2"):
		return OK
	case strings.HasPrefix(code, "3"):
		return Redirect
	default:
		return Error
	}
}

// IsNumeric reports whether key is a plain decimal status code.
func IsNumeric(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SortKeys orders status keys in place: numeric codes ascending by value,
// then other non-numeric keys lexicographically, then Unresponsive.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		return Less(keys[i], keys[j])
	})
}

// Less reports whether status key a sorts before b.
func Less(a, b string) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	if ra == 0 {
		na, _ := strconv.ParseUint(a, 10, 64)
		nb, _ := strconv.ParseUint(b, 10, 64)
		if na != nb {
			return na < nb
		}
	}
	return a < b
}

func rank(key string) int {
	switch {
	case IsNumeric(key):
		return 0
	case key == Unresponsive:
		return 2
	default:
		return 1
	}
}
