// Package executor is the private execution venue.
//
// Records delegated to an Executor are written only here until they are
// handed back. Commitments applied privately journal their events in the
// executor's own store; nothing about individual amounts reaches the public
// journal until a record is undelegated.
//
// Every private write lands in the executor's store together with its
// events. Record bytes leave the executor only when the record exits.
// Undelegation is two-phase: Snapshot freezes the records, the caller
// publishes them, and Release forgets them. A failed publish can be retried
// with another Snapshot.
//
// After a restart, Recover rebuilds the held set from the store and checks
// it against the public owner tags. A hand-back that was published but not
// released is finished there; a public record tagged for this executor with
// no private copy stops the boot.
package executor
