// Package delegation decides owner-tag transitions of public records.
//
// A record moves protocol -> executor when delegated, executor -> in_transit
// when the executor's final bytes are published, and in_transit -> protocol
// when the hand-back settles. Every transition is journaled publicly; the
// journal names the record and the executor, never its contents.
package delegation
