package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/untreu2/aircommit/acerr"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	line := "acU29tZSBleGFtcGxlIGNvbnRlbnQ=acsig1qw508d6qejxtdg4y5r3z"
	frames, err := Encode(line)
	require.NoError(t, err)
	assert.Len(t, frames, len(line)*BitsPerChar)

	got, err := Decode(frames)
	require.NoError(t, err)
	assert.Equal(t, line, got)
}

func TestEncode_KnownPattern(t *testing.T) {
	frames, err := Encode("a") // 0x61 = 01100001
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true, false, false, false, false, true}, frames)
}

func TestEncode_RejectsNonASCII(t *testing.T) {
	_, err := Encode("ac\xc3\xa9")
	assert.Equal(t, "AC-LIGHT-002", acerr.RuleID(err))

	_, err = Encode("")
	assert.Equal(t, "AC-LIGHT-001", acerr.RuleID(err))
}

func TestDecode_RejectsMalformedSequences(t *testing.T) {
	_, err := Decode(nil)
	assert.Equal(t, "AC-LIGHT-001", acerr.RuleID(err))

	_, err = Decode(make([]bool, 9))
	assert.Equal(t, "AC-LIGHT-003", acerr.RuleID(err))

	// Eight dark frames decode to NUL, which is not printable.
	_, err = Decode(make([]bool, 8))
	assert.Equal(t, "AC-LIGHT-004", acerr.RuleID(err))
}
