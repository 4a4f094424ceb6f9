// Package similarity scores how relevant one document label is to another.
//
// Scores are float64 values in [0, 1] for base oracles. The InterestBoost
// decorator can raise a score by up to MaxBoost (1.2x), which is why edge
// weights in the search graph range over [0, 1.2].
//
// Oracles never fail: a pair the oracle cannot judge scores 0.
//
// Available oracles:
//   - ExactMatch: 1 for case-insensitive equality, else 0
//   - SequenceRatio: longest-matching-block ratio of the two labels
//   - TokenCosine: cosine similarity of word counts
//   - Lexical: the maximum of the three above
//   - EmbeddingOracle: cosine similarity of OpenAI-compatible embeddings
//
// Cache wraps any oracle for the lifetime of one search and deduplicates
// concurrent identical requests.
package similarity
