package keys

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/untreu2/aircommit/acerr"
)

// GeneratePrivateKey returns a fresh 32-byte secp256k1 private key read
// from r, or from crypto/rand when r is nil.
func GeneratePrivateKey(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	priv, err := secp256k1.GeneratePrivateKeyFromRand(r)
	if err != nil {
		return nil, acerr.Wrap(acerr.KindCrypto, "AC-CRYPTO-005", "generate private key", err)
	}
	return priv.Serialize(), nil
}

// DerivePublicKey returns the 64-byte X||Y public key for a 32-byte private
// key. Derivation is deterministic scalar multiplication of the base point.
func DerivePublicKey(priv []byte) ([]byte, error) {
	sk, err := parsePrivate(priv)
	if err != nil {
		return nil, err
	}
	// SerializeUncompressed is 0x04 || X || Y; the wire form drops the tag.
	return sk.PubKey().SerializeUncompressed()[1:], nil
}

func parsePrivate(priv []byte) (*secp256k1.PrivateKey, error) {
	if len(priv) != PrivateKeySize {
		return nil, acerr.New(acerr.KindCrypto, "AC-CRYPTO-001",
			fmt.Sprintf("private key must be %d bytes, got %d", PrivateKeySize, len(priv)))
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(priv); overflow {
		return nil, acerr.New(acerr.KindCrypto, "AC-CRYPTO-001", "private key scalar out of range")
	}
	if scalar.IsZero() {
		return nil, acerr.New(acerr.KindCrypto, "AC-CRYPTO-001", "private key scalar is zero")
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}

func parsePublic(pub []byte) (*secp256k1.PublicKey, error) {
	if len(pub) != PublicKeySize {
		return nil, acerr.New(acerr.KindCrypto, "AC-CRYPTO-002",
			fmt.Sprintf("public key must be %d bytes, got %d", PublicKeySize, len(pub)))
	}
	uncompressed := make([]byte, 0, 1+PublicKeySize)
	uncompressed = append(uncompressed, 0x04)
	uncompressed = append(uncompressed, pub...)
	pk, err := secp256k1.ParsePubKey(uncompressed)
	if err != nil {
		return nil, acerr.Wrap(acerr.KindCrypto, "AC-CRYPTO-002", "public key point not on curve", err)
	}
	return pk, nil
}
