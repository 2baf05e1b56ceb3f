// Package record defines the stored envelope shared by every launch record,
// the ownership tag that says which venue may mutate it, and the fixed-layout
// binary codec used for record bodies.
//
// A record body starts with an 8-byte discriminator derived from its kind
// and a one-byte layout version. Readers of a record that may be mid-transfer
// between owners wrap the raw bytes in an untrusted View and promote it only
// after the discriminator, version, and domain invariants check out.
package record
