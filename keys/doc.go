// Package keys provides the signing identities that authenticate envelopes.
//
// secp256k1 is the validator's native scheme and the default everywhere: a
// key file holding bare hex is a secp256k1 private key, the same format the
// validator tooling writes to ~/.sawtooth/keys/<name>.priv. ed25519 and
// ed448 identities are available for services that accept them and are
// written with an explicit "<alg>:" prefix.
//
// Signing is deterministic for every supported scheme, but callers must only
// rely on verifiability: signatures from different key types over the same
// message never compare equal.
package keys
