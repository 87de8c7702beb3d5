// Package preflight provides readiness checks for the directories and
// files shelve mutates.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before applying a plan. If any
//     check fails, the pass halts before the first move rather than
//     discovering a read-only disk halfway through a transaction.
//   - The CLI "shelve status" command uses the individual check
//     functions to display filesystem health.
package preflight
