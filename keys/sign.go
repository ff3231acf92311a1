package keys

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/untreu2/aircommit/acerr"
)

// DefaultHashAlg is the digest used on the wire. The alternatives below are
// accepted so a deployment can pin a different digest on both ends, but
// interoperability with the original tooling requires sha256.
const DefaultHashAlg = "sha256"

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, acerr.New(acerr.KindCrypto, "AC-CRYPTO-004",
			fmt.Sprintf("unsupported hash algorithm %q", hashAlg))
	}
}

// Sign produces a 64-byte r||s signature over sha256(message) with the given
// 32-byte private key. Nonces follow RFC 6979, so signing is deterministic.
func Sign(priv, message []byte) ([]byte, error) {
	return SignWithHash(priv, message, DefaultHashAlg)
}

// SignWithHash is Sign with an explicit digest from the fixed registry
// (sha256, sha512, sha3-256).
func SignWithHash(priv, message []byte, hashAlg string) ([]byte, error) {
	sk, err := parsePrivate(priv)
	if err != nil {
		return nil, err
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return nil, err
	}
	sig := ecdsa.Sign(sk, digest)
	r := sig.R()
	s := sig.S()
	rb := r.Bytes()
	sb := s.Bytes()
	out := make([]byte, 0, SignatureSize)
	out = append(out, rb[:]...)
	out = append(out, sb[:]...)
	return out, nil
}

// Verify checks a 64-byte r||s signature over sha256(message) against a
// 64-byte public key. A signature that simply does not match returns
// (false, nil); errors are reserved for structurally invalid key or
// signature material.
func Verify(pub, message, sig []byte) (bool, error) {
	return VerifyWithHash(pub, message, sig, DefaultHashAlg)
}

// VerifyWithHash is Verify with an explicit digest from the fixed registry.
func VerifyWithHash(pub, message, sig []byte, hashAlg string) (bool, error) {
	pk, err := parsePublic(pub)
	if err != nil {
		return false, err
	}
	parsed, err := parseSignature(sig)
	if err != nil {
		return false, err
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return false, err
	}
	return parsed.Verify(digest, pk), nil
}

func parseSignature(sig []byte) (*ecdsa.Signature, error) {
	if len(sig) != SignatureSize {
		return nil, acerr.New(acerr.KindCrypto, "AC-CRYPTO-003",
			fmt.Sprintf("signature must be %d bytes, got %d", SignatureSize, len(sig)))
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return nil, acerr.New(acerr.KindCrypto, "AC-CRYPTO-003", "signature r out of range")
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return nil, acerr.New(acerr.KindCrypto, "AC-CRYPTO-003", "signature s out of range")
	}
	if r.IsZero() || s.IsZero() {
		return nil, acerr.New(acerr.KindCrypto, "AC-CRYPTO-003", "signature scalar is zero")
	}
	return ecdsa.NewSignature(&r, &s), nil
}
