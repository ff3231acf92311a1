// Package keys implements the aircommit key and signature scheme.
//
// Keys and signatures travel as bech32 text under three tags: acsec for
// 32-byte secp256k1 private keys, acpub for 64-byte X||Y public keys and
// acsig for 64-byte r||s ECDSA signatures. All three share one checksummed
// codec; only the tag differs.
//
// Signing is deterministic (RFC 6979 nonces) so the same key and message
// always produce the same signature bytes.
package keys
