package similarity

import (
	"context"
	"log/slog"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is used when no model is configured.
const DefaultEmbeddingModel = string(openai.SmallEmbedding3)

// EmbeddingOracle scores labels by the cosine similarity of their
// embeddings, requested from an OpenAI-compatible endpoint.
// Negative similarities are reported as 0.
type EmbeddingOracle struct {
	client *openai.Client
	model  openai.EmbeddingModel
	logger *slog.Logger
}

// EmbeddingOption configures an EmbeddingOracle.
type EmbeddingOption func(*embeddingSettings)

type embeddingSettings struct {
	baseURL string
	model   string
	logger  *slog.Logger
}

// WithBaseURL points the oracle at a different OpenAI-compatible API,
// e.g. a local inference server. The URL includes the version path
// ("http://localhost:8080/v1").
func WithBaseURL(u string) EmbeddingOption {
	return func(s *embeddingSettings) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithModel sets the embedding model name.
func WithModel(model string) EmbeddingOption {
	return func(s *embeddingSettings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithLogger sets the logger used to report request failures.
func WithLogger(logger *slog.Logger) EmbeddingOption {
	return func(s *embeddingSettings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewEmbeddingOracle creates an EmbeddingOracle authenticated with apiKey.
func NewEmbeddingOracle(apiKey string, opts ...EmbeddingOption) *EmbeddingOracle {
	s := &embeddingSettings{
		model:  DefaultEmbeddingModel,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cfg := openai.DefaultConfig(apiKey)
	if s.baseURL != "" {
		cfg.BaseURL = s.baseURL
	}

	return &EmbeddingOracle{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.EmbeddingModel(s.model),
		logger: s.logger,
	}
}

// Score implements Oracle. Both labels are embedded in one request.
func (o *EmbeddingOracle) Score(ctx context.Context, a, b string, _ []string) float64 {
	if a == "" || b == "" {
		return 0
	}

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{a, b},
		Model: o.model,
	})
	if err != nil {
		o.logger.Debug("embedding request failed", "a", a, "b", b, "error", err)
		return 0
	}

	vectors := make([][]float32, 2)
	for _, d := range resp.Data {
		if d.Index >= 0 && d.Index < len(vectors) {
			vectors[d.Index] = d.Embedding
		}
	}
	if vectors[0] == nil || vectors[1] == nil {
		o.logger.Debug("embedding response incomplete", "a", a, "b", b, "items", len(resp.Data))
		return 0
	}

	return clamp01(cosine(vectors[0], vectors[1]))
}

// cosine returns the cosine similarity of two vectors, or 0 if their
// lengths differ or either is all zeros.
func cosine(x, y []float32) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	var dot, xm, ym float64
	for i := range x {
		dot += float64(x[i]) * float64(y[i])
		xm += float64(x[i]) * float64(x[i])
		ym += float64(y[i]) * float64(y[i])
	}
	if xm == 0 || ym == 0 {
		return 0
	}
	return dot / (math.Sqrt(xm) * math.Sqrt(ym))
}
