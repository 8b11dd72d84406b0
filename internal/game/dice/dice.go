// Package dice provides the random sources used by the battle core.
//
// Battles draw from a seeded Source so that a seed and an input log fully
// determine the outcome. The crypto source exists only to pick fresh seeds.
package dice

// Source produces uniformly distributed non-negative integers.
type Source interface {
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
