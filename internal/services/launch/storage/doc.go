// Package storage defines the persistence contracts of a venue: the public
// ledger keeps records, balances, and the hash-chained journal behind one
// Store, and every protocol operation runs inside a single Update so its
// transfers, record writes, and events commit or roll back together.
package storage
