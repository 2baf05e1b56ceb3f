// Package event defines the immutable event envelope, the event registry, and
// the canonical hashing used to chain journal entries.
//
// Events are facts emitted by deciders. Each registered type declares its
// visibility: public events may be appended to the public ledger journal,
// private events only ever land in the private executor's journal so
// individual commitment amounts stay hidden until graduation.
package event
