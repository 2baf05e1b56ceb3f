// Package assets is the transfer primitive the launch protocol moves funds
// with.
//
// Balances are keyed by (account, asset). The native asset is address.Zero.
// Accounts carry an owner; a transfer out of an account must be signed by
// that owner. Program-owned accounts (vaults, custody) are opened with a
// native-asset reserve that keeps them alive and is never withdrawable.
//
// The ledger is transaction-scoped: it operates on whatever Store it is
// given, so a caller passing a storage transaction gets all-or-nothing
// transfers alongside its record writes.
package assets
