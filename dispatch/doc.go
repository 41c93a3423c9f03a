// Package dispatch implements named routing over mailboxes: a
// [Registry] of broadcast groups (the Dispatcher of §4.10) and a
// [Distributor], a typed request/response endpoint with pluggable member
// selection (round-robin by default).
//
// The registry shards its group table by name, hashed with
// github.com/cespare/xxhash/v2, so registration and broadcast under
// different group names do not contend on one lock — the same sharding
// idea the rest of the example pack reaches for wherever a single
// process-wide map would otherwise become a hot lock.
package dispatch
