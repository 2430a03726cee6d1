package pool

import "errors"

// ErrDoubleRecycle is logged, with a capture of the second caller's
// stack, when Handle.Recycle is called on a handle that is already
// sitting in its home Stack or a HandoffQueue; Recycle has no return
// value, so no caller receives it. It is a programming error: fix the
// caller, do not retry.
var ErrDoubleRecycle = errors.New("pool: handle recycled twice without an intervening Get")

// ErrAlienHandle names the condition the deprecated Pool.RecycleHandle
// path reports by returning false: the handle did not originate from the
// Pool it is being returned to. No function in this package returns it.
var ErrAlienHandle = errors.New("pool: handle does not belong to this pool")

// errStateInvariant marks a handle observed during transfer whose
// recycleID is neither zero nor equal to lastRecycledID. It aborts
// transfer of that one slot; it is logged, never propagated to a caller,
// since transfer has no caller-facing error return (section 7: treated as
// corruption, recovered locally).
var errStateInvariant = errors.New("pool: handle recycled multiple times")
