package accode

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Fingerprint returns the CIDv1 string (raw multicodec, sha2-256 multihash)
// of a container line. It is a stable receipt for audit logs: both ends can
// compute it independently and compare out of band.
func Fingerprint(line string) string {
	sum, err := multihash.Sum([]byte(line), multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid parameters; with SHA2_256 and
		// default length this is unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// FingerprintCID returns the fingerprint as a cid.Cid.
func FingerprintCID(line string) (cid.Cid, error) {
	sum, err := multihash.Sum([]byte(line), multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}
