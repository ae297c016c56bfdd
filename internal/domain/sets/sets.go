// Package sets provides a small generic hash set used for every set relation
// in the matching domain (subtypes, barriers, features, fields of study).
package sets

import (
	"cmp"
	"slices"
)

// Set is an unordered collection of unique values.
type Set[T comparable] map[T]struct{}

// New returns an empty set with room for n elements.
func New[T comparable](n int) Set[T] {
	return make(Set[T], n)
}

// Of builds a set from the given values.
func Of[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v. Calling Add on a nil set panics, like any nil map write.
func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

// Has reports whether v is a member.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of members. A nil set has zero members.
func (s Set[T]) Len() int { return len(s) }

// Empty reports whether the set has no members.
func (s Set[T]) Empty() bool { return len(s) == 0 }

// Intersects reports whether s and other share at least one member.
func (s Set[T]) Intersects(other Set[T]) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for v := range small {
		if large.Has(v) {
			return true
		}
	}
	return false
}

// Intersection returns a new set holding the members present in both sets.
func (s Set[T]) Intersection(other Set[T]) Set[T] {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	out := New[T](len(small))
	for v := range small {
		if large.Has(v) {
			out.Add(v)
		}
	}
	return out
}

// Union returns a new set holding the members of both sets.
func (s Set[T]) Union(other Set[T]) Set[T] {
	out := New[T](len(s) + len(other))
	for v := range s {
		out.Add(v)
	}
	for v := range other {
		out.Add(v)
	}
	return out
}

// Clone returns a copy of s.
func (s Set[T]) Clone() Set[T] {
	out := New[T](len(s))
	for v := range s {
		out.Add(v)
	}
	return out
}

// Slice returns the members in unspecified order.
func (s Set[T]) Slice() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

// Sorted returns the members of an ordered set in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	out := s.Slice()
	slices.Sort(out)
	return out
}
