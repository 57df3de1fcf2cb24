// Package process implements the parallel worker strategy. Each spawned task
// runs in a separate OS process: the current binary re-executed with a worker
// request in its environment. The worker runs the named action, publishes
// its result to a shared channel keyed by its pid and exits.
//
// Binaries that use this strategy must dispatch to Serve early in main:
//
//	if process.IsWorker() {
//		process.Serve(ctx, actions)
//	}
//
// Admission is controlled by a Gate. The parent process is the only writer of
// the gate: it releases a slot when it observes a worker exit or halts it.
package process
