package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikid/internal/graph"
	"github.com/nao1215/wikid/internal/model"
	"github.com/nao1215/wikid/internal/similarity"
)

// CandidateSource yields the admitted, normalized outbound candidates of
// a document in extraction order. Errors are fetch failures.
type CandidateSource interface {
	Candidates(ctx context.Context, id model.DocumentID) ([]model.DocumentID, error)
}

// Redirector is implemented by candidate sources that follow redirects.
// Redirect reports the document id resolved to when it was fetched.
type Redirector interface {
	Redirect(id model.DocumentID) (model.DocumentID, bool)
}

// CandidateSourceFunc adapts a function to the CandidateSource interface.
type CandidateSourceFunc func(ctx context.Context, id model.DocumentID) ([]model.DocumentID, error)

// Candidates implements CandidateSource.
func (f CandidateSourceFunc) Candidates(ctx context.Context, id model.DocumentID) ([]model.DocumentID, error) {
	return f(ctx, id)
}

// Engine runs searches. An Engine holds no per-search state and may run
// several searches concurrently; each Run gets its own State and oracle
// cache.
type Engine struct {
	source   CandidateSource
	oracle   similarity.Oracle
	logger   *slog.Logger
	observer Observer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger. Without an observer, search events are also
// logged through it.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver sets an observer that receives search events in place of
// the default logging observer. A nil observer discards events.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		if o == nil {
			o = nopObserver{}
		}
		e.observer = o
	}
}

// NewEngine creates an Engine that expands documents with source and
// scores candidates with oracle.
func NewEngine(source CandidateSource, oracle similarity.Oracle, opts ...EngineOption) *Engine {
	e := &Engine{
		source: source,
		oracle: oracle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.observer == nil {
		e.observer = NewLogObserver(e.logger)
	}
	return e
}

// scored is a candidate together with its relevance to the destination.
type scored struct {
	id    model.DocumentID
	score float64
}

// Run searches for opts.Destination starting at opts.Start.
//
// The returned result is non-nil whenever the options are valid, and
// carries the graph built so far even on failure. Reaching the
// destination, exhausting the frontier and exceeding the expansion budget
// are all reported through the result's Outcome with a nil error. Fetch
// failures return a *FetchError and cancellation returns the context's
// error.
func (e *Engine) Run(ctx context.Context, opts Options) (*model.SearchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	result := model.NewSearchResult(opts.Start, opts.Destination)
	result.StartedAt = started
	result.Aliases = opts.aliases()
	result.Interests = slices.Clone(opts.Interests)
	result.Directed = opts.Directed

	st := NewState(opts)
	defer func() {
		result.Expanded = st.Visited.Order()
		result.Edges = st.Graph.EdgeList()
		result.Elapsed = time.Since(started)
	}()

	if opts.Start == opts.Destination {
		result.Outcome = model.OutcomeSuccess
		result.Path = []model.DocumentID{opts.Start}
		return result, nil
	}

	oracle := similarity.NewCache(e.oracle)
	destLabel := result.Aliases.LabelOf(opts.Destination)

	for {
		if err := ctx.Err(); err != nil {
			e.fail(result, model.OutcomeCancelled, err)
			return result, err
		}
		if opts.MaxExpansions > 0 && st.Steps() >= opts.MaxExpansions {
			e.fail(result, model.OutcomeBudgetExceeded, ErrBudgetExceeded)
			return result, nil
		}

		node := st.Current
		st.Visited.Add(node)
		e.observer.OnExpand(st.Steps(), node)

		candidates, err := e.source.Candidates(ctx, node)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				e.fail(result, model.OutcomeCancelled, ctxErr)
				return result, ctxErr
			}
			fetchErr := &FetchError{ID: node, Step: st.Steps(), Err: err}
			e.fail(result, model.OutcomeFetchFailed, fetchErr)
			return result, fetchErr
		}

		if e.redirectsTo(node, opts.Destination) {
			if st.Graph.AddEdge(node, opts.Destination, graph.ScoreCeiling) {
				e.observer.OnEdge(model.Edge{From: node, To: opts.Destination, Weight: graph.ScoreCeiling})
			}
			e.succeed(result, st)
			return result, nil
		}

		candidates, found := e.prepare(candidates, node, st, opts.Destination)
		ranked := e.score(ctx, oracle, candidates, result.Aliases, destLabel, opts)
		if err := ctx.Err(); err != nil {
			e.fail(result, model.OutcomeCancelled, err)
			return result, err
		}

		for _, c := range retain(ranked, opts.MaxCandidatesPerNode, opts.Destination) {
			if st.Graph.AddEdge(node, c.id, c.score) {
				e.observer.OnEdge(model.Edge{From: node, To: c.id, Weight: c.score})
			}
		}

		if found {
			e.succeed(result, st)
			return result, nil
		}

		next, weight, ok := graph.SelectNext(st.Graph, st.Visited)
		if !ok {
			e.fail(result, model.OutcomeFrontierExhausted, ErrFrontierExhausted)
			return result, nil
		}
		e.observer.OnSelect(next, weight)
		st.Current = next
	}
}

// redirectsTo reports whether fetching node landed on dest. The redirect
// is recorded as a zero-cost edge so that the path ends at dest.
func (e *Engine) redirectsTo(node, dest model.DocumentID) bool {
	r, ok := e.source.(Redirector)
	if !ok {
		return false
	}
	final, ok := r.Redirect(node)
	return ok && final == dest
}

// prepare drops the expanded node itself, repeated and already visited
// candidates. If the destination is present, candidates after it are
// dropped too and found is true.
func (e *Engine) prepare(candidates []model.DocumentID, node model.DocumentID, st *State, dest model.DocumentID) (_ []model.DocumentID, found bool) {
	out := make([]model.DocumentID, 0, len(candidates))
	seen := make(map[model.DocumentID]bool, len(candidates))
	for _, c := range candidates {
		if c == node || seen[c] || st.Visited.Contains(c) {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if c == dest {
			return out, true
		}
	}
	return out, false
}

// score rates every candidate against the destination label. All scores
// are computed before the caller touches the graph, whether scoring runs
// sequentially or in parallel.
func (e *Engine) score(ctx context.Context, oracle similarity.Oracle, candidates []model.DocumentID, aliases model.Aliases, destLabel string, opts Options) []scored {
	out := make([]scored, len(candidates))
	for i, c := range candidates {
		out[i].id = c
	}

	if opts.ScoreConcurrency < 2 || len(candidates) < 2 {
		for i, c := range candidates {
			out[i].score = oracle.Score(ctx, aliases.LabelOf(c), destLabel, opts.Interests)
		}
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.ScoreConcurrency)
	for i, c := range candidates {
		g.Go(func() error {
			out[i].score = oracle.Score(gctx, aliases.LabelOf(c), destLabel, opts.Interests)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Debug("scoring interrupted", "error", err)
	}
	return out
}

// retain keeps the k highest-scoring candidates, always including dest,
// and returns them in their original order. Equal scores keep the
// earlier candidate. k <= 0 keeps everything.
func retain(candidates []scored, k int, dest model.DocumentID) []scored {
	if k <= 0 || len(candidates) <= k {
		return candidates
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case candidates[a].score > candidates[b].score:
			return -1
		case candidates[a].score < candidates[b].score:
			return 1
		default:
			return 0
		}
	})

	kept := order[:k]
	if i := slices.IndexFunc(candidates, func(c scored) bool { return c.id == dest }); i >= 0 && !slices.Contains(kept, i) {
		kept[k-1] = i
	}
	slices.Sort(kept)

	out := make([]scored, 0, k)
	for _, i := range kept {
		out = append(out, candidates[i])
	}
	return out
}

// succeed records the extracted path on result.
func (e *Engine) succeed(result *model.SearchResult, st *State) {
	result.Outcome = model.OutcomeSuccess

	path, err := graph.ShortestPath(st.Graph, result.Start, result.Destination)
	if err != nil {
		// Only possible if the graph lost the edge to the destination.
		e.logger.Warn("path extraction failed", "error", err)
		result.Error = fmt.Sprintf("path extraction: %v", err)
		return
	}
	result.Path = path.Nodes
	result.PathCost = path.Cost
	e.logger.Info("destination reached", "steps", st.Steps(), "path_length", len(path.Nodes))
}

// fail records a terminal failure on result.
func (e *Engine) fail(result *model.SearchResult, outcome model.Outcome, err error) {
	result.Outcome = outcome
	result.Error = err.Error()

	level := slog.LevelWarn
	if errors.Is(err, context.Canceled) {
		level = slog.LevelInfo
	}
	e.logger.Log(context.Background(), level, "search stopped", "outcome", outcome.String(), "error", err)
}
