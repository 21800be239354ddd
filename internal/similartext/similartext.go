// Package similartext builds "did you mean" hints for names that could not
// be resolved.
package similartext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxDistance is the edit distance above which names are not suggested.
const maxDistance = 3

// Find returns a hint listing the names closest to src, or an empty string
// if none is within maxDistance. Names are compared case insensitively and
// listed sorted, so the hint does not depend on the order of names.
func Find(names []string, src string) string {
	res := Closest(names, src)
	if len(res) == 0 {
		return ""
	}
	return fmt.Sprintf(", maybe you mean %s?", strings.Join(res, " or "))
}

// Closest returns the sorted names at the minimum edit distance from src.
func Closest(names []string, src string) []string {
	if src == "" {
		return nil
	}

	src = strings.ToLower(src)
	min := maxDistance + 1
	seen := make(map[string]bool)
	var res []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if seen[lower] {
			continue
		}

		dist := levenshtein.ComputeDistance(lower, src)
		switch {
		case dist < min:
			min = dist
			res = []string{name}
			seen = map[string]bool{lower: true}
		case dist == min:
			res = append(res, name)
			seen[lower] = true
		}
	}

	sort.Strings(res)
	return res
}
