// Package sqlite is the durable venue store: records with their owner tag,
// accounts and balances for the transfer primitive, and the signed event
// journal, all in one SQLite database so an operation commits atomically.
// The public ledger and the executor's private store each get their own
// database.
package sqlite
