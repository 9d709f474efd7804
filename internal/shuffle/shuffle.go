// Package shuffle produces randomized presentation orders for answer options.
package shuffle

import "math/rand"

// Options returns a uniform-random permutation (Fisher-Yates) of the given
// option texts. The input slice is never mutated; the canonical ordering,
// where index 0 is the correct answer, stays intact for grading.
//
// The shuffler holds no state. Callers cache the result per question so the
// same question shows the same order on every redisplay within a session.
func Options(rnd *rand.Rand, options []string) []string {
	shuffled := make([]string, len(options))
	copy(shuffled, options)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
