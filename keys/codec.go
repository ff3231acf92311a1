package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/untreu2/aircommit/acerr"
)

// Kind identifies what a piece of encoded key material is.
type Kind int

const (
	KindPrivate Kind = iota
	KindPublic
	KindSignature
)

const (
	// HRPPrivate tags encoded private keys ("acsec1...").
	HRPPrivate = "acsec"
	// HRPPublic tags encoded public keys ("acpub1...").
	HRPPublic = "acpub"
	// HRPSignature tags encoded signatures ("acsig1...").
	HRPSignature = "acsig"
)

const (
	// PrivateKeySize is the raw private key length: one 256-bit scalar.
	PrivateKeySize = 32
	// PublicKeySize is the raw public key length: X||Y, 256 bits each.
	PublicKeySize = 64
	// SignatureSize is the raw signature length: r||s, 256 bits each.
	SignatureSize = 64

	// SignatureTextLen is the length of an encoded signature:
	// 5-char tag + "1" separator + ceil(64*8/5)=103 data chars + 6 checksum.
	SignatureTextLen = 115
)

func (k Kind) String() string {
	switch k {
	case KindPrivate:
		return "private key"
	case KindPublic:
		return "public key"
	case KindSignature:
		return "signature"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) hrp() string {
	switch k {
	case KindPrivate:
		return HRPPrivate
	case KindPublic:
		return HRPPublic
	case KindSignature:
		return HRPSignature
	default:
		return ""
	}
}

func (k Kind) rawSize() int {
	switch k {
	case KindPrivate:
		return PrivateKeySize
	case KindPublic:
		return PublicKeySize
	case KindSignature:
		return SignatureSize
	default:
		return 0
	}
}

// Encode renders raw key material as checksummed bech32 text under the
// kind's tag. Encoding is deterministic and round-trips exactly.
func Encode(kind Kind, raw []byte) (string, error) {
	hrp := kind.hrp()
	if hrp == "" {
		return "", acerr.New(acerr.KindInternal, "AC-KEY-000", fmt.Sprintf("unknown key kind %d", int(kind)))
	}
	if len(raw) != kind.rawSize() {
		return "", acerr.New(acerr.KindEncoding, "AC-KEY-010",
			fmt.Sprintf("%s must be %d bytes, got %d", kind, kind.rawSize(), len(raw)))
	}
	grouped, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", acerr.Wrap(acerr.KindInternal, "AC-KEY-011", "regroup to 5-bit", err)
	}
	text, err := bech32.Encode(hrp, grouped)
	if err != nil {
		return "", acerr.Wrap(acerr.KindInternal, "AC-KEY-012", "bech32 encode", err)
	}
	return text, nil
}

// Decode parses checksummed bech32 text back into raw key material and its
// kind.
//
// The bodies here exceed BIP-173's 90-character decode cap (a public key
// encodes to 115 characters), so decoding is done without the length limit,
// matching the reference decoder the original tooling shipped with.
func Decode(text string) (Kind, []byte, error) {
	hrp, grouped, err := bech32.DecodeNoLimit(text)
	if err != nil {
		var chk bech32.ErrInvalidChecksum
		if errors.As(err, &chk) {
			return 0, nil, acerr.Wrap(acerr.KindEncoding, "AC-KEY-002", "checksum mismatch", err)
		}
		return 0, nil, acerr.Wrap(acerr.KindEncoding, "AC-KEY-001", "malformed bech32 text", err)
	}

	var kind Kind
	switch hrp {
	case HRPPrivate:
		kind = KindPrivate
	case HRPPublic:
		kind = KindPublic
	case HRPSignature:
		kind = KindSignature
	default:
		return 0, nil, acerr.New(acerr.KindEncoding, "AC-KEY-003",
			fmt.Sprintf("unknown prefix %q", hrp))
	}

	raw, err := bech32.ConvertBits(grouped, 5, 8, false)
	if err != nil {
		return 0, nil, acerr.Wrap(acerr.KindEncoding, "AC-KEY-001", "malformed bech32 data", err)
	}
	if len(raw) != kind.rawSize() {
		return 0, nil, acerr.New(acerr.KindEncoding, "AC-KEY-004",
			fmt.Sprintf("%s must be %d bytes, got %d", kind, kind.rawSize(), len(raw)))
	}
	return kind, raw, nil
}

// DecodeKind is Decode restricted to one expected kind; text of any other
// kind is rejected with the unknown-prefix rule.
func DecodeKind(text string, want Kind) ([]byte, error) {
	kind, raw, err := Decode(text)
	if err != nil {
		return nil, err
	}
	if kind != want {
		return nil, acerr.New(acerr.KindEncoding, "AC-KEY-003",
			fmt.Sprintf("expected %s (%s1...), got %s", want, want.hrp(), kind))
	}
	return raw, nil
}

// SignatureToken is the prefix every encoded signature starts with.
const SignatureToken = HRPSignature + "1"

// HasSignaturePrefix reports whether s starts with the encoded-signature
// token.
func HasSignaturePrefix(s string) bool {
	return strings.HasPrefix(s, SignatureToken)
}
