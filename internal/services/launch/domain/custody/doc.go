// Package custody models per-participant ephemeral custody records.
//
// A participant funds custody publicly, delegates the record to the private
// executor, and commits from the tracked balance there. The ledger sees the
// commitment; public observers only see the funding. After undelegation the
// committed funds are swept from custody into the launch vault.
//
// The tracked Balance is the uncommitted part of the deposit. The physical
// balance of the custody account is read from the asset ledger and is never
// stored on the record.
package custody
