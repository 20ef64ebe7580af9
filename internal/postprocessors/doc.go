// Package postprocessors holds the processors that turn decoded documents
// into stored passages. The chunker subpackage is the only processor.
package postprocessors
