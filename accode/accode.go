// Package accode implements the AC container: one signed, ASCII, single-line
// code binding a Base64 payload to its detached secp256k1 signature.
//
// Wire format: "ac" + base64(file bytes) + bech32 signature ("acsig1...").
// The signature covers the Base64 TEXT of the payload, so the signed message
// is exactly the substring that travels over the physical channel.
package accode

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/untreu2/aircommit/acerr"
	"github.com/untreu2/aircommit/keys"
)

// Tag is the fixed leading marker of every container line.
const Tag = "ac"

// MinLen is the minimum viable container: tag, one payload character and a
// full encoded signature.
const MinLen = len(Tag) + 1 + keys.SignatureTextLen

// Container is a parsed AC line.
type Container struct {
	// Payload is the Base64 text of the transported bytes.
	Payload string
	// Signature is the bech32 "acsig1..." text.
	Signature string
}

// String reassembles the container line.
func (c *Container) String() string {
	return Tag + c.Payload + c.Signature
}

// Build signs fileBytes with the 32-byte private key and assembles the
// container line. The empty input is rejected: a container must carry at
// least one payload character.
func Build(fileBytes, priv []byte) (string, error) {
	return BuildWithHash(fileBytes, priv, keys.DefaultHashAlg)
}

// BuildWithHash is Build with an explicit digest from the keys registry.
// Both ends must agree on the digest; the wire default is sha256.
func BuildWithHash(fileBytes, priv []byte, hashAlg string) (string, error) {
	if len(fileBytes) == 0 {
		return "", acerr.New(acerr.KindEncoding, "AC-CONT-007", "refusing to build a container for empty input")
	}
	payload := base64.StdEncoding.EncodeToString(fileBytes)
	sig, err := keys.SignWithHash(priv, []byte(payload), hashAlg)
	if err != nil {
		return "", err
	}
	sigText, err := keys.Encode(keys.KindSignature, sig)
	if err != nil {
		return "", err
	}
	return Tag + payload + sigText, nil
}

// Parse splits a container line into payload and signature text.
//
// The boundary is the LAST occurrence of the signature token "acsig1".
// Base64 payload text can legitimately contain that token, but a signature
// body cannot ('i' and '1' are outside the bech32 charset), so the true
// signature is always the last-token suffix.
func Parse(line string) (*Container, error) {
	for i := 0; i < len(line); i++ {
		if line[i] > 0x7e || line[i] < 0x21 {
			return nil, acerr.New(acerr.KindEncoding, "AC-CONT-006",
				fmt.Sprintf("container must be printable ASCII, found byte 0x%02x at %d", line[i], i))
		}
	}
	if !strings.HasPrefix(line, Tag) {
		return nil, acerr.New(acerr.KindEncoding, "AC-CONT-001", "missing leading container tag")
	}
	if len(line) < MinLen {
		return nil, acerr.New(acerr.KindEncoding, "AC-CONT-002",
			fmt.Sprintf("container truncated: %d chars, need at least %d", len(line), MinLen))
	}
	rest := line[len(Tag):]
	idx := strings.LastIndex(rest, keys.SignatureToken)
	if idx < 0 {
		return nil, acerr.New(acerr.KindEncoding, "AC-CONT-003", "no signature token in container")
	}
	if idx == 0 {
		return nil, acerr.New(acerr.KindEncoding, "AC-CONT-002", "container has no payload before the signature")
	}
	return &Container{Payload: rest[:idx], Signature: rest[idx:]}, nil
}

// Open parses the line, verifies the signature over the Base64 payload text
// against the 64-byte public key, and returns the decoded file bytes.
func Open(line string, pub []byte) ([]byte, error) {
	return OpenWithHash(line, pub, keys.DefaultHashAlg)
}

// OpenWithHash is Open with an explicit digest from the keys registry.
func OpenWithHash(line string, pub []byte, hashAlg string) ([]byte, error) {
	c, err := Parse(line)
	if err != nil {
		return nil, err
	}
	sig, err := keys.DecodeKind(c.Signature, keys.KindSignature)
	if err != nil {
		return nil, err
	}
	ok, err := keys.VerifyWithHash(pub, []byte(c.Payload), sig, hashAlg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, acerr.New(acerr.KindCrypto, "AC-CONT-004", "signature does not verify")
	}
	fileBytes, err := base64.StdEncoding.DecodeString(c.Payload)
	if err != nil {
		// The signature already verified, so a bad payload here means the
		// sender signed corrupt Base64. Reported, never guessed at.
		return nil, acerr.Wrap(acerr.KindEncoding, "AC-CONT-005", "payload is not valid Base64", err)
	}
	return fileBytes, nil
}
