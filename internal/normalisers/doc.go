// Package normalisers provides implementations of the Normaliser interface.
// Each normaliser decodes raw file bytes of one format into text.
//
// Only plain text is ingested, so plaintext is the single implementation.
package normalisers
