// Package memory provides in-process implementations of driven ports.
// They back --ephemeral runs, where nothing outlives the process, and tests.
package memory
