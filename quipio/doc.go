// Package quipio is the optional proactive I/O layer (C13): scatter/
// gather file reads and writes dispatched onto executor.Pool's blocking
// pool, so a vectored syscall never ties up a non-blocking run-queue
// worker. It covers the same ground as original_source's `pub mod io`
// (readv/writev scatter/gather), without the io_uring backend the
// original also mentions — no ecosystem library in this module's
// dependency graph wraps io_uring, and a hand-rolled binding would be
// exactly the kind of fabricated dependency this project avoids.
package quipio
