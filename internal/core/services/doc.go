// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Ingestion: normalise, chunk, embed, store. Questions: embed, scan and
// rank every chunk, then synthesise an answer from the survivors.
//
// Services are pure Go with no CGO.
package services
