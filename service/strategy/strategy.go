package strategy

import (
	"context"

	"github.com/viant/conductor/model/action"
)

// Strategy defines how a task is launched, probed for completion and terminated.
// Every implementation must honour the same contract so that the orchestrator
// can treat them interchangeably.
type Strategy[T any] interface {
	// Spawn launches the action and returns an opaque worker id. It fails with
	// ErrAdmissionRefused when the concurrency ceiling is reached and with
	// ErrSpawnFailure on an unrecoverable launch error.
	Spawn(ctx context.Context, anAction action.Action[T], args []any) (string, error)

	// Halt forcibly terminates a worker; best-effort and idempotent
	Halt(ctx context.Context, workerID string) error

	// LatestCompleted returns any one finished worker without blocking
	LatestCompleted(ctx context.Context) (string, bool, error)

	// HasCompleted probes a specific worker without blocking; a failing probe
	// returns ErrFail
	HasCompleted(ctx context.Context, workerID string) (bool, error)

	// FlushResult retrieves and clears the worker result. Action failures are
	// returned as *action.Error.
	FlushResult(ctx context.Context, workerID string) (T, error)
}
