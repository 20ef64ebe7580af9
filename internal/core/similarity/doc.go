// Package similarity scores embedding vectors against each other.
//
// Scores are cosine similarities in [-1, 1]. Vectors of different length or
// with zero magnitude are errors, never silently scored.
package similarity
