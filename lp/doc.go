// Package lp implements the lightweight process: the suspendable unit of
// work the executor schedules. An LP pairs a body function with a Stack
// of lifecycle hooks (before_start, after_complete, after_panic,
// before_restart, after_restart) that fire around the body's execution,
// plus a panic-isolating [Handle]/[RecoverableHandle].
//
// Go goroutines already park transparently on blocking calls, so unlike
// original_source's tinyproc-based futures an LP's body runs to
// completion in a single call rather than being repeatedly polled; the
// executor's work-stealing applies at the granularity of "which LP runs
// next on which worker", not mid-body suspension. schedule_fn is kept as
// the hook the restart machinery in package actor uses to resubmit an LP
// onto the run queue, the idiomatic Go narrowing of the original waker.
package lp
