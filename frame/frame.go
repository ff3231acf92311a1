// Package frame splits an AC container line into bounded, indexed parts for
// multi-part QR transport and reassembles them on the receiving side.
//
// Each part renders as one line, "{index}P{total}QR: {chunk}", where chunk
// is a raw slice of the container text. No re-encoding is applied: the
// container is already ASCII-safe for QR transport.
//
// Parts may be scanned in any order, with duplicates; the Collector reports
// exactly which indices are still missing so the user can re-scan only
// those.
package frame

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/untreu2/aircommit/acerr"
)

// Part is one indexed chunk of a split container line.
type Part struct {
	Index int // 1-based
	Total int
	Chunk string
}

// headerSep terminates the "{index}P{total}" header of a rendered part.
const headerSep = "QR: "

// Split slices line into ceil(len/maxChunk) contiguous parts in original
// order. Concatenating the chunks in index order reproduces line exactly.
func Split(line string, maxChunk int) ([]Part, error) {
	if line == "" {
		return nil, acerr.New(acerr.KindFraming, "AC-FRAME-001", "nothing to split: empty container")
	}
	if maxChunk < 1 {
		return nil, acerr.New(acerr.KindFraming, "AC-FRAME-002",
			fmt.Sprintf("part payload length must be positive, got %d", maxChunk))
	}
	total := (len(line) + maxChunk - 1) / maxChunk
	parts := make([]Part, 0, total)
	for i := 0; i < total; i++ {
		start := i * maxChunk
		end := start + maxChunk
		if end > len(line) {
			end = len(line)
		}
		parts = append(parts, Part{Index: i + 1, Total: total, Chunk: line[start:end]})
	}
	return parts, nil
}

// Render produces the single-line wire form of the part.
func (p Part) Render() string {
	return strconv.Itoa(p.Index) + "P" + strconv.Itoa(p.Total) + headerSep + p.Chunk
}

// ParseLine parses one scanned line against the part grammar.
func ParseLine(raw string) (Part, error) {
	sep := strings.Index(raw, headerSep)
	if sep < 0 {
		return Part{}, acerr.New(acerr.KindFraming, "AC-FRAME-003", "frame header terminator not found")
	}
	header := raw[:sep]
	chunk := raw[sep+len(headerSep):]

	idxText, totalText, ok := strings.Cut(header, "P")
	if !ok {
		return Part{}, acerr.New(acerr.KindFraming, "AC-FRAME-003", "frame header missing part separator")
	}
	index, err := parseCount(idxText)
	if err != nil {
		return Part{}, acerr.Wrap(acerr.KindFraming, "AC-FRAME-003", "bad part index", err)
	}
	total, err := parseCount(totalText)
	if err != nil {
		return Part{}, acerr.Wrap(acerr.KindFraming, "AC-FRAME-003", "bad part total", err)
	}
	if chunk == "" {
		return Part{}, acerr.New(acerr.KindFraming, "AC-FRAME-003", "empty chunk")
	}
	if index < 1 || index > total {
		return Part{}, acerr.New(acerr.KindFraming, "AC-FRAME-004",
			fmt.Sprintf("part index %d outside [1, %d]", index, total))
	}
	return Part{Index: index, Total: total, Chunk: chunk}, nil
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty count")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("count %q is not a decimal integer", s)
		}
	}
	return strconv.Atoi(s)
}

// IncompleteError reports a reassembly attempt with parts still missing.
type IncompleteError struct {
	Total   int
	Missing []int // ascending
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("transmission incomplete: missing %d of %d parts %v",
		len(e.Missing), e.Total, e.Missing)
}

// Collector accumulates scanned parts across scan events. The zero value is
// ready to use. It is a plain value owned by one caller; concurrent scanning
// loops should each hold their own.
type Collector struct {
	total  int
	chunks map[int]string
}

// Add records one part. Re-adding an index already held with the same chunk
// is a no-op; the same index with a different chunk, or a part whose total
// disagrees with earlier parts, is rejected.
func (c *Collector) Add(p Part) error {
	if p.Index < 1 || p.Index > p.Total {
		return acerr.New(acerr.KindFraming, "AC-FRAME-004",
			fmt.Sprintf("part index %d outside [1, %d]", p.Index, p.Total))
	}
	if c.total != 0 && p.Total != c.total {
		return acerr.New(acerr.KindFraming, "AC-FRAME-005",
			fmt.Sprintf("part declares total %d, earlier parts declared %d", p.Total, c.total))
	}
	if c.chunks == nil {
		c.chunks = make(map[int]string)
	}
	if held, ok := c.chunks[p.Index]; ok {
		if held == p.Chunk {
			return nil
		}
		return acerr.New(acerr.KindFraming, "AC-FRAME-006",
			fmt.Sprintf("conflicting chunk for part %d", p.Index))
	}
	c.total = p.Total
	c.chunks[p.Index] = p.Chunk
	return nil
}

// Len returns the number of distinct parts held.
func (c *Collector) Len() int {
	return len(c.chunks)
}

// Missing returns the indices not yet collected, ascending.
func (c *Collector) Missing() []int {
	missing := make([]int, 0)
	for i := 1; i <= c.total; i++ {
		if _, ok := c.chunks[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// Reassemble concatenates the chunks in index order. It fails with
// *IncompleteError while any index in [1, total] is absent.
func (c *Collector) Reassemble() (string, error) {
	if c.total == 0 {
		return "", acerr.New(acerr.KindFraming, "AC-FRAME-007", "no parts collected")
	}
	if missing := c.Missing(); len(missing) > 0 {
		return "", &IncompleteError{Total: c.total, Missing: missing}
	}
	var sb strings.Builder
	for i := 1; i <= c.total; i++ {
		sb.WriteString(c.chunks[i])
	}
	return sb.String(), nil
}
