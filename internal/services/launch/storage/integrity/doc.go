// Package integrity signs and verifies the launch event hash chain.
//
// Each appended event gets a content hash, a chain hash linking it to the
// previous event, and an HMAC signature of the chain hash. Signing keys are
// derived per launch from a root key, so leaking one launch's derived key
// does not expose others.
package integrity
