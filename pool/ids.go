package pool

import "sync/atomic"

// idGenerator hands out process-wide unique identities used as CAS tokens
// on Handle.lastRecycledID: one per owner Stack's direct-push path
// (ownThreadID, shared — any stack pushing directly into itself uses the
// same sentinel, since ownership is already established by pointer
// identity at the call site) and one per HandoffQueue. Mirrors the
// Recycler.java ID_GENERATOR/OWN_THREAD_ID scheme.
var idGenerator atomic.Uint64

func nextID() uint64 {
	return idGenerator.Add(1)
}

// ownThreadID is the sentinel lastRecycledID value written by a Stack's
// own pushNow (same-goroutine direct return path). It is reserved once at
// package init so it can never collide with a HandoffQueue's generated id.
var ownThreadID = nextID()
