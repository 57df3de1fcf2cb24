// Package conductor runs independent tasks concurrently across a small
// bounded pool of worker processes, collects their results as they finish and
// aborts the batch cleanly once a cumulative wait budget is spent.
//
// Tasks are named actions registered with the Service. The parallel strategy
// re-executes the current binary for every task, so main must hand control to
// the worker before doing anything else:
//
//	srv, _ := conductor.New()
//	_ = conductor.Register(srv, square)
//	srv.ServeWorker(ctx) // returns only in the parent process
//	o, _ := conductor.NewOrchestrator[int](srv)
//	_ = o.Register("small", square, 2)
//	results, err := o.Collect(ctx)
//
// The inline strategy runs the same actions synchronously in the caller.
package conductor
