// Package mnemonic renders a container line as a BIP-39 word sequence.
//
// The words are a human-checkable digest, not part of the protocol: two
// parties read them to each other to confirm they hold the same container
// before trusting a manual copy.
package mnemonic

import (
	"crypto/sha256"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"github.com/untreu2/aircommit/acerr"
)

// WordCount is the fixed length of the check phrase: 32 bytes of sha256
// entropy map to 24 BIP-39 words.
const WordCount = 24

// FromContainer hashes the container line with sha256 and maps the digest
// to a 24-word BIP-39 phrase.
func FromContainer(line string) (string, error) {
	if line == "" {
		return "", acerr.New(acerr.KindEncoding, "AC-WORD-002", "nothing to digest")
	}
	digest := sha256.Sum256([]byte(line))
	phrase, err := bip39.NewMnemonic(digest[:])
	if err != nil {
		// 32 bytes is always valid BIP-39 entropy; failing here is a bug.
		return "", acerr.Wrap(acerr.KindInternal, "AC-WORD-001", "wordlist mapping failed", err)
	}
	return phrase, nil
}

// Words is FromContainer split into its individual words.
func Words(line string) ([]string, error) {
	phrase, err := FromContainer(line)
	if err != nil {
		return nil, err
	}
	return strings.Fields(phrase), nil
}
