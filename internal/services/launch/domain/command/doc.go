// Package command defines the canonical command envelope used across the
// launch write path.
//
// Commands express business intent from API callers. They are the stable
// boundary before domain deciders: every command names the launch it targets,
// the actor that issued it, and the venue (public ledger or private executor)
// it is allowed to run in.
package command
