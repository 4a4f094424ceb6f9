package similarity

import (
	"context"
	"math"
)

// Oracle returns the relevance of label a to label b.
// interests are optional topical hints; oracles that do not use them
// ignore them. Implementations must be safe for concurrent use.
type Oracle interface {
	Score(ctx context.Context, a, b string, interests []string) float64
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, a, b string, interests []string) float64

// Score implements Oracle.
func (f OracleFunc) Score(ctx context.Context, a, b string, interests []string) float64 {
	return f(ctx, a, b, interests)
}

// clamp01 bounds v to [0, 1] and maps NaN to 0.
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// MaxBoost is the largest factor InterestBoost applies to a score.
const MaxBoost = 1.2

// InterestBoost raises scores of labels related to the caller's interests.
// The base score is multiplied by 1 + (MaxBoost-1)*r, where r is the best
// relevance of label a to any interest. Without interests the base score
// is returned unchanged.
type InterestBoost struct {
	base Oracle
}

// NewInterestBoost wraps base with interest boosting.
func NewInterestBoost(base Oracle) *InterestBoost {
	return &InterestBoost{base: base}
}

// Score implements Oracle.
func (b *InterestBoost) Score(ctx context.Context, a, c string, interests []string) float64 {
	score := clamp01(b.base.Score(ctx, a, c, nil))
	if len(interests) == 0 || score == 0 {
		return score
	}

	best := 0.0
	for _, interest := range interests {
		if interest == "" {
			continue
		}
		if r := clamp01(b.base.Score(ctx, a, interest, nil)); r > best {
			best = r
		}
	}
	return score * (1 + (MaxBoost-1)*best)
}
