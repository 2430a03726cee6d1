// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free SPSC ring buffer primitive. Unrelated to package pool's own
// Link/HandoffQueue types: those are purpose-built to the exact
// single-producer/single-consumer and shared-capacity discipline
// pool.Pool requires, while RingBuffer here is a general-purpose
// building block used outside the hot path — pool's diagnostic event
// log (see pool.DiagnosticEvent) wraps one behind a mutex to record
// DoubleRecycle and StateInvariant occurrences.
package concurrency
