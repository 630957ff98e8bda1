/*
Package schnorr wraps the BIP-340 Schnorr signatures and the MuSig2 multi
signatures of btcec, so that several wallet owners can produce one 64 byte
signature that verifies against the combination of their public keys.

Public keys are always 33 byte compressed secp256k1 points. Messages are
hashed with sha256 before a single signer signs them, while aggregate
signatures are produced over an already computed 32 byte digest.

An aggregate signature is created in two rounds. Every owner creates a
Signer and publishes its public nonce. Once all nonces are known, each
Signer signs once with the combined nonce and the partial signatures are
combined into the final signature.
*/
package schnorr
