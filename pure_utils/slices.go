package pure_utils

import (
	"github.com/hashicorp/go-set/v2"
)

// Intersection returns the elements of a that are also in b, in the order of a, without duplicates.
func Intersection[T comparable](a, b []T) []T {
	inB := set.From(b)
	seen := set.New[T](len(a))
	out := make([]T, 0, len(a))
	for _, item := range a {
		if inB.Contains(item) && seen.Insert(item) {
			out = append(out, item)
		}
	}
	return out
}
