// Package strategy defines the pluggable concurrency policy used by the
// orchestrator: how workers are launched, probed and terminated. The inline
// sub-package runs actions synchronously in the caller; the process
// sub-package runs each action in a separate OS process.
package strategy
