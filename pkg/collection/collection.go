// Package collection provides generic, functional-style helpers for slices.
// The catalog and game packages lean on it for filtering, lookup by
// predicate, sampling, and copy-on-shuffle permutation.
//
// All functions work with Go generics (go 1.21+).
package collection

import "math/rand"

// Map transforms each element of slice s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns elements of s for which fn returns true.
func Filter[T any](s []T, fn func(T) bool) []T {
	var out []T
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// First returns the first element matching fn, or (zero, false).
func First[T any](s []T, fn func(T) bool) (T, bool) {
	for _, v := range s {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Contains reports whether any element of s satisfies fn.
func Contains[T any](s []T, fn func(T) bool) bool {
	_, ok := First(s, fn)
	return ok
}

// UniqueBy removes duplicates using a key extracted by fn, keeping the
// first occurrence of each key in order.
func UniqueBy[T any, K comparable](s []T, fn func(T) K) []T {
	seen := make(map[K]struct{}, len(s))
	var out []T
	for _, v := range s {
		k := fn(v)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// Shuffle returns a copy of s permuted by r. The input is never mutated,
// so memoized slices stay stable after a one-time shuffle.
func Shuffle[T any](s []T, r *rand.Rand) []T {
	out := make([]T, len(s))
	copy(out, s)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Take returns the first n elements of s (all of s when n exceeds its length).
func Take[T any](s []T, n int) []T {
	if n > len(s) {
		n = len(s)
	}
	out := make([]T, n)
	copy(out, s[:n])
	return out
}
