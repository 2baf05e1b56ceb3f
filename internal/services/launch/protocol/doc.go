// Package protocol is the public settlement service of a launch.
//
// Every operation runs in one store transaction: load the records it
// touches, assert their owner, decide, move funds, fold, persist, and
// journal. A rejection or a failed transfer leaves nothing behind.
// Operations on delegated records are routed to the private executor.
package protocol
