// Package channel defines the out-of-band key/value medium workers use to
// publish results and share the admission counter. Implementations live in
// the memory (single process) and fs (afs-backed, visible across processes)
// sub-packages.
package channel
