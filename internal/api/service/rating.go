package service

import "math"

// RoundScore turns a mean review score into the integer rating exposed
// on titles. Ties round half-up (7.5 -> 8, 1.5 -> 2); every read path,
// batch or single, goes through this one function so the rounding rule
// cannot drift.
func RoundScore(mean float64) int {
	return int(math.Floor(mean + 0.5))
}
