// Package app assembles the launch server: the SQLite public ledger, the
// in-process private executor, the protocol service, the gRPC API and the
// HTTP explorer.
package app
