// Package progress keeps aggregated task counters of an orchestrator run and
// lets callers observe them through a callback or a snapshot.
package progress
