package keys

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/untreu2/aircommit/acerr"
)

func mustKeypair(t *testing.T, seed byte) (priv, pub []byte) {
	t.Helper()
	priv = make([]byte, PrivateKeySize)
	priv[PrivateKeySize-1] = seed
	pub, err := DerivePublicKey(priv)
	if err != nil {
		t.Fatalf("DerivePublicKey: %v", err)
	}
	return priv, pub
}

func TestDerivePublicKey_GeneratorVector(t *testing.T) {
	// Private key 1 maps to the curve's base point.
	priv := make([]byte, PrivateKeySize)
	priv[PrivateKeySize-1] = 1
	pub, err := DerivePublicKey(priv)
	if err != nil {
		t.Fatalf("DerivePublicKey: %v", err)
	}
	want, _ := hex.DecodeString(
		"79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" +
			"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8")
	if !bytes.Equal(pub, want) {
		t.Fatalf("generator mismatch:\n got %x\nwant %x", pub, want)
	}
}

func TestSign_Deterministic(t *testing.T) {
	priv, _ := mustKeypair(t, 7)
	msg := []byte("aGVsbG8=")
	a, err := Sign(priv, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	b, err := Sign(priv, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("RFC 6979 signing must be deterministic")
	}
	if len(a) != SignatureSize {
		t.Fatalf("expected %d-byte signature, got %d", SignatureSize, len(a))
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	priv, pub := mustKeypair(t, 9)
	msg := []byte("arbitrary payload bytes")
	sig, err := Sign(priv, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	ok, err := Verify(pub, msg, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("valid signature rejected")
	}
}

func TestVerify_WrongKeyOrMessage_IsFalseNotError(t *testing.T) {
	priv, pub := mustKeypair(t, 9)
	_, otherPub := mustKeypair(t, 10)
	msg := []byte("arbitrary payload bytes")
	sig, err := Sign(priv, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := Verify(otherPub, msg, sig)
	if err != nil {
		t.Fatalf("Verify returned error for a normal mismatch: %v", err)
	}
	if ok {
		t.Fatalf("signature accepted under the wrong key")
	}

	ok, err = Verify(pub, []byte("tampered"), sig)
	if err != nil {
		t.Fatalf("Verify returned error for a normal mismatch: %v", err)
	}
	if ok {
		t.Fatalf("signature accepted for a tampered message")
	}
}

func TestVerify_TamperedSignatureBit(t *testing.T) {
	priv, pub := mustKeypair(t, 12)
	msg := []byte("payload")
	sig, err := Sign(priv, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	for i := 0; i < len(sig); i += 7 {
		mutated := append([]byte(nil), sig...)
		mutated[i] ^= 0x01
		ok, err := Verify(pub, msg, mutated)
		if err != nil {
			// Flips may push r or s out of range; that is a structural error.
			if !acerr.IsKind(err, acerr.KindCrypto) {
				t.Fatalf("byte %d: expected Crypto kind, got %v", i, err)
			}
			continue
		}
		if ok {
			t.Fatalf("tampered signature accepted (byte %d)", i)
		}
	}
}

func TestSign_InvalidPrivateKey(t *testing.T) {
	zero := make([]byte, PrivateKeySize)
	_, err := Sign(zero, []byte("m"))
	if acerr.RuleID(err) != "AC-CRYPTO-001" {
		t.Fatalf("expected AC-CRYPTO-001 for zero key, got %v", err)
	}

	short := make([]byte, 16)
	_, err = Sign(short, []byte("m"))
	if acerr.RuleID(err) != "AC-CRYPTO-001" {
		t.Fatalf("expected AC-CRYPTO-001 for short key, got %v", err)
	}
}

func TestVerify_MalformedInputs(t *testing.T) {
	priv, pub := mustKeypair(t, 3)
	sig, err := Sign(priv, []byte("m"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	notAPoint := make([]byte, PublicKeySize) // (0, 0) is not on the curve
	_, err = Verify(notAPoint, []byte("m"), sig)
	if acerr.RuleID(err) != "AC-CRYPTO-002" {
		t.Fatalf("expected AC-CRYPTO-002, got %v", err)
	}

	_, err = Verify(pub, []byte("m"), sig[:40])
	if acerr.RuleID(err) != "AC-CRYPTO-003" {
		t.Fatalf("expected AC-CRYPTO-003, got %v", err)
	}

	zeroSig := make([]byte, SignatureSize)
	_, err = Verify(pub, []byte("m"), zeroSig)
	if acerr.RuleID(err) != "AC-CRYPTO-003" {
		t.Fatalf("expected AC-CRYPTO-003, got %v", err)
	}
}

func TestSignWithHash_Registry(t *testing.T) {
	priv, pub := mustKeypair(t, 5)
	msg := []byte("digest registry")
	for _, alg := range []string{"sha256", "sha512", "sha3-256"} {
		sig, err := SignWithHash(priv, msg, alg)
		if err != nil {
			t.Fatalf("SignWithHash(%s): %v", alg, err)
		}
		ok, err := VerifyWithHash(pub, msg, sig, alg)
		if err != nil {
			t.Fatalf("VerifyWithHash(%s): %v", alg, err)
		}
		if !ok {
			t.Fatalf("%s round trip rejected", alg)
		}
	}
	_, err := SignWithHash(priv, msg, "md5")
	if acerr.RuleID(err) != "AC-CRYPTO-004" {
		t.Fatalf("expected AC-CRYPTO-004, got %v", err)
	}
}

func TestGeneratePrivateKey_Valid(t *testing.T) {
	priv, err := GeneratePrivateKey(nil)
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	if len(priv) != PrivateKeySize {
		t.Fatalf("expected %d bytes, got %d", PrivateKeySize, len(priv))
	}
	if _, err := DerivePublicKey(priv); err != nil {
		t.Fatalf("generated key unusable: %v", err)
	}
}
