// Package launch models the launch lifecycle: opening a launch, marking it
// delegated, graduating it on the public path, finalizing it after the pool
// has been graduated privately, and releasing vault funds to the creator.
//
// The package also owns the commitment window guard shared by every
// commitment-accepting operation (direct commit, deposit-backed record,
// custody funding, and private commit).
package launch
