// Package workflow drives one organizing pass through its pipeline
// stages.
//
// The Manager wires the scanner, planner, and applier behind the
// stage.Handler contract and runs them in a fixed order: snapshot the
// root, build a plan, gate on preflight checks, then hand the plan to
// the transaction controller. Each stage's outcome lands on the shared
// stage.Pass, and every pass is recorded in the catalog so "shelve
// history" can answer what happened and when.
//
// Passes are serialized within a process; concurrent processes are
// excluded by the watch lock.
package workflow
