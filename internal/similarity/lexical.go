package similarity

import (
	"context"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// fold prepares a label for comparison: NFC normalization, Unicode case
// folding and collapsed whitespace.
func fold(s string) string {
	s = norm.NFC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// ExactMatch scores 1 when the labels are equal ignoring case and
// surrounding whitespace, and 0 otherwise. Empty labels never match.
var ExactMatch = OracleFunc(func(_ context.Context, a, b string, _ []string) float64 {
	if fa := fold(a); fa != "" && fa == fold(b) {
		return 1
	}
	return 0
})

// SequenceRatio scores the labels by 2*M/T, where M is the number of
// characters in matching blocks and T the total number of characters.
// Matching blocks are found by repeatedly taking the longest common
// substring and recursing on both sides of it.
var SequenceRatio = OracleFunc(func(_ context.Context, a, b string, _ []string) float64 {
	return sequenceRatio([]rune(fold(a)), []rune(fold(b)))
})

func sequenceRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return 2 * float64(matchingChars(a, b)) / float64(total)
}

// matchingChars returns the number of characters in the matching blocks
// of a and b.
func matchingChars(a, b []rune) int {
	type span struct{ alo, ahi, blo, bhi int }

	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest common substring of a[alo:ahi] and
// b[blo:bhi]. Among equally long matches the one starting earliest in a,
// then earliest in b, is returned.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo
	// lengths[j+1] is the length of the match ending at a[i-1], b[j].
	prev := make([]int, bhi-blo+1)
	for i := alo; i < ahi; i++ {
		cur := make([]int, bhi-blo+1)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := prev[j-blo] + 1
			cur[j-blo+1] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev = cur
	}
	return besti, bestj, bestk
}

// TokenCosine scores the labels by the cosine similarity of their word
// count vectors.
var TokenCosine = OracleFunc(func(_ context.Context, a, b string, _ []string) float64 {
	af := wordCounts(fold(a))
	bf := wordCounts(fold(b))

	var dot, amag, bmag float64
	for w, n := range af {
		dot += float64(n * bf[w])
		amag += float64(n * n)
	}
	for _, n := range bf {
		bmag += float64(n * n)
	}
	if amag == 0 || bmag == 0 {
		return 0
	}
	return dot / (math.Sqrt(amag) * math.Sqrt(bmag))
})

func wordCounts(s string) map[string]int {
	counts := make(map[string]int)
	for _, w := range strings.Fields(s) {
		counts[w]++
	}
	return counts
}

// Lexical combines several oracles by taking the maximum score.
type Lexical struct {
	scorers []Oracle
}

// NewLexical creates a Lexical oracle. With no scorers it uses
// ExactMatch, SequenceRatio and TokenCosine.
func NewLexical(scorers ...Oracle) *Lexical {
	if len(scorers) == 0 {
		scorers = []Oracle{ExactMatch, SequenceRatio, TokenCosine}
	}
	return &Lexical{scorers: scorers}
}

// Score implements Oracle. A label that is empty after folding scores 0
// against anything.
func (l *Lexical) Score(ctx context.Context, a, b string, interests []string) float64 {
	if fold(a) == "" || fold(b) == "" {
		return 0
	}
	best := 0.0
	for _, s := range l.scorers {
		if v := clamp01(s.Score(ctx, a, b, interests)); v > best {
			best = v
		}
	}
	return best
}
