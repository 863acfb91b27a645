// Package peaks orders the samples of a signal by magnitude.
//
// The order drives lazy cost evaluation: visiting the largest samples first
// front-loads the biggest squared-error contributions, so a poor offset
// reveals itself after only a few evaluations.
package peaks

import (
	"slices"
)

// Order returns the indices of signal sorted by descending sample value.
// The result is a permutation of 0..len(signal)-1. Equal values keep
// ascending index order, so the result is deterministic for a given input.
//
// Complexity: O(N log N) time, O(N) space.
func Order(signal []float64) []int {
	order := make([]int, len(signal))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(i, j int) int {
		switch {
		case signal[i] > signal[j]:
			return -1
		case signal[i] < signal[j]:
			return 1
		default:
			return 0
		}
	})

	return order
}

// Top returns the first k entries of order, clamping k to [0, len(order)].
// The returned slice shares storage with order.
func Top(order []int, k int) []int {
	k = max(0, min(k, len(order)))
	return order[:k]
}

// IsPermutation reports whether order holds every index 0..n-1 exactly once
func IsPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}
