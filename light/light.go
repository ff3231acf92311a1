// Package light maps a container line to a black/white flash sequence for
// optical transport: 8 bits per ASCII character, most significant bit
// first, true meaning light on.
//
// Rendering the frames (screen flashes, GIF, LED) and capturing them back
// are external collaborators; this package is the pure transform in both
// directions.
package light

import (
	"fmt"
	"strings"

	"github.com/untreu2/aircommit/acerr"
)

// BitsPerChar is the number of frames one character occupies.
const BitsPerChar = 8

// Encode maps line to its flash sequence.
func Encode(line string) ([]bool, error) {
	if line == "" {
		return nil, acerr.New(acerr.KindEncoding, "AC-LIGHT-001", "nothing to encode")
	}
	frames := make([]bool, 0, len(line)*BitsPerChar)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c > 0x7e || c < 0x21 {
			return nil, acerr.New(acerr.KindEncoding, "AC-LIGHT-002",
				fmt.Sprintf("byte 0x%02x at %d is outside printable ASCII", c, i))
		}
		for bit := BitsPerChar - 1; bit >= 0; bit-- {
			frames = append(frames, c&(1<<bit) != 0)
		}
	}
	return frames, nil
}

// Decode recovers the line from a captured flash sequence.
func Decode(frames []bool) (string, error) {
	if len(frames) == 0 {
		return "", acerr.New(acerr.KindEncoding, "AC-LIGHT-001", "empty frame sequence")
	}
	if len(frames)%BitsPerChar != 0 {
		return "", acerr.New(acerr.KindEncoding, "AC-LIGHT-003",
			fmt.Sprintf("frame count %d is not a multiple of %d", len(frames), BitsPerChar))
	}
	var sb strings.Builder
	for i := 0; i < len(frames); i += BitsPerChar {
		var c byte
		for bit := 0; bit < BitsPerChar; bit++ {
			c <<= 1
			if frames[i+bit] {
				c |= 1
			}
		}
		if c > 0x7e || c < 0x21 {
			return "", acerr.New(acerr.KindEncoding, "AC-LIGHT-004",
				fmt.Sprintf("character %d decodes to non-printable byte 0x%02x", i/BitsPerChar, c))
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}
