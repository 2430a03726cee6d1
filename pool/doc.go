// Package pool implements a thread-local object pool with cross-thread
// recycling queues.
//
// A Pool binds a factory function to per-owner Stacks. Get borrows a free
// handle from the calling owner's Stack, scavenging cross-thread handoff
// queues before falling back to the factory. Recycle returns a handle to
// its home Stack: directly if the caller owns that Stack, or through a
// single-producer handoff queue otherwise.
//
// See handle.go, link.go, queue.go, stack.go and registry.go for the
// pieces, and DESIGN.md at the repository root for how each maps back to
// its source of grounding.
package pool
