// Package ledger is the commitment ledger: the pool aggregate and the
// per-participant records, plus the deciders that mutate them.
//
// Every commitment path (direct commit, deposit-backed record, private
// custody-backed commit) funnels through the same apply-commitment decision
// so the aggregate invariant holds regardless of where the funds moved:
// pool.TotalCommitted equals the sum of participant amounts.
//
// Allocation and claim also live here because they are the only other
// writers of a participant record.
package ledger
