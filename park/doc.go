// Package park coordinates worker blocking and wake-up for the
// executor. A [Parker] lets a worker with nothing to do suspend without
// spinning; the owning [Sleepers] set tracks which workers are parked so
// that a push to any run queue can wake exactly one of them, the
// idiomatic Go narrowing (a buffered channel in place of a futex) of the
// park/unpark coordination original_source's executor.rs performs via
// its thread pool.
package park
