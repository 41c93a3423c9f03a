// Package runqueue implements the executor's two-tier run queue: a
// bounded per-worker [Local] queue backed by code.hybscloud.com/lfq's
// FAA-based MPMC algorithm, with overflow and work-stealing fallback
// into a [Global] queue shared by every worker.
//
// A worker's own Push always targets its Local queue first; when Local
// is full the LP spills to Global. A worker that finds its Local queue
// empty drains Global before attempting to steal a batch from another
// worker's Local queue, matching the drain-then-steal order of §4.2.
package runqueue
