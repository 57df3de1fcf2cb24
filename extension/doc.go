// Package extension provides the run-time registry of named actions.
//
// A worker process cannot receive a Go closure from its parent, so every
// action that should run on the process strategy is registered by name on
// both sides: the parent refers to the name, the re-executed worker binary
// looks it up here and runs it.
package extension
