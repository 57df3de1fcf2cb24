// Package tracing integrates OpenTelemetry with conductor. Orchestrator runs
// open a span per iteration; without an installed provider spans are no-op.
package tracing
