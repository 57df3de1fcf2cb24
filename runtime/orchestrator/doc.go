// Package orchestrator drives a batch of registered tasks through a strategy.
// It admits tasks under the strategy's concurrency limit, polls them for
// completion without blocking on any single worker, enforces a cumulative wait
// budget and surfaces results one at a time through a forward-only cursor:
//
//	for err = o.Reset(ctx); err == nil && o.Valid(); err = o.Next(ctx) {
//		fmt.Println(o.Key(), o.Value())
//	}
package orchestrator
