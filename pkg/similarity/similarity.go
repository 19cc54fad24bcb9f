// Package similarity scores how much textual content two files share and
// derives static orderings from those scores.
//
// Files are reduced to token counts ([Counts]): tokens are the substrings
// between whitespace and the punctuation characters .;(){}[] . The pairwise
// [Score] weights each shared token by its length, so long identifiers that
// appear in both files count for more than short ones.
package similarity

import (
	"bufio"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the length a token must exceed to be counted by the
// similarity chain.
const MinTokenLength = 4

// Counts maps each token to the number of times it occurs.
type Counts map[string]int

// Total returns the number of tokens counted.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

func isDelimiter(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ';', '(', ')', '{', '}', '[', ']':
		return true
	}
	return false
}

// maxTokenSize bounds the bytes buffered for a single token. Longer tokens
// are skipped rather than counted.
const maxTokenSize = 1 << 20

// scanTokens is a bufio.SplitFunc that yields the runs between delimiters,
// like bufio.ScanWords with the extra punctuation of [isDelimiter].
func scanTokens(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		if !atEOF && !utf8.FullRune(data[start:]) {
			return start, nil, nil
		}
		r, width := utf8.DecodeRune(data[start:])
		if !isDelimiter(r) {
			break
		}
		start += width
	}
	for i := start; i < len(data); {
		if !atEOF && !utf8.FullRune(data[i:]) {
			return start, nil, nil
		}
		r, width := utf8.DecodeRune(data[i:])
		if isDelimiter(r) {
			return i + width, data[start:i], nil
		}
		i += width
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

// splitter wraps scanTokens so that a token outgrowing the scan buffer is
// discarded instead of failing the scan.
type splitter struct {
	limit    int
	skipping bool
}

func (s *splitter) split(data []byte, atEOF bool) (int, []byte, error) {
	skipped := 0
	if s.skipping {
		for skipped < len(data) {
			r, width := utf8.DecodeRune(data[skipped:])
			if isDelimiter(r) {
				break
			}
			skipped += width
		}
		if skipped == len(data) {
			return skipped, nil, nil
		}
		s.skipping = false
	}
	advance, token, err := scanTokens(data[skipped:], atEOF)
	if token == nil && !atEOF && len(data)-skipped-advance >= s.limit {
		s.skipping = true
		return len(data), nil, nil
	}
	return skipped + advance, token, err
}

// Tokenize counts the tokens of r longer than minLen bytes. Tokens longer
// than maxTokenSize are ignored.
func Tokenize(r io.Reader, minLen int) (Counts, error) {
	return tokenize(r, minLen, maxTokenSize)
}

func tokenize(r io.Reader, minLen, limit int) (Counts, error) {
	counts := make(Counts)
	sp := &splitter{limit: limit}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, limit)), limit)
	sc.Split(sp.split)
	for sc.Scan() {
		if tok := sc.Bytes(); len(tok) > minLen {
			counts[string(tok)]++
		}
	}
	return counts, sc.Err()
}

// TokenizeFile counts the tokens of the file at path.
func TokenizeFile(path string, minLen int) (Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Tokenize(f, minLen)
}

// Score returns the length-weighted overlap of a and b:
//
//	sum over shared tokens of min(a[t], b[t]) * len(t), divided by
//	total(a) + total(b)
//
// It is symmetric and 0 when both are empty.
func Score(a, b Counts) float64 {
	total := a.Total() + b.Total()
	if total == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	overlap := 0
	for tok, ca := range a {
		if cb, ok := b[tok]; ok {
			overlap += min(ca, cb) * len(tok)
		}
	}
	return float64(overlap) / float64(total)
}

// TokenCount is one entry of a [Profile].
type TokenCount struct {
	Token string
	Count int
}

// Profile lists the tokens of c from most to least frequent, ties in token
// order.
func Profile(c Counts) []TokenCount {
	out := make([]TokenCount, 0, len(c))
	for tok, n := range c {
		out = append(out, TokenCount{tok, n})
	}
	slices.SortFunc(out, func(x, y TokenCount) int {
		if x.Count != y.Count {
			return y.Count - x.Count
		}
		return strings.Compare(x.Token, y.Token)
	})
	return out
}

// CompareProfiles orders two profiles lexicographically, entry by entry,
// comparing the token first and then the count. A profile that is a prefix
// of the other sorts first.
func CompareProfiles(a, b []TokenCount) int {
	for i := range min(len(a), len(b)) {
		if c := strings.Compare(a[i].Token, b[i].Token); c != 0 {
			return c
		}
		if a[i].Count != b[i].Count {
			if a[i].Count < b[i].Count {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}
