// Package executor is the work-stealing runtime that drives every LP.
// It maintains two pools: a fixed-size worker pool, one worker per
// logical core, pinned to its core where the platform supports CPU
// affinity; and a dynamically sized blocking pool for LPs that are
// allowed to make blocking syscalls. [ThreadManager] owns both pools and
// load-balances submissions across workers; [Pool] is the public
// entry point (Spawn/Run/SpawnBlocking) callers use to schedule work.
package executor
