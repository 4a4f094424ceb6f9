package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/wikid/internal/model"
	"github.com/nao1215/wikid/internal/report"
	"github.com/nao1215/wikid/internal/search"
)

// Runner runs one search. *search.Engine implements it.
type Runner interface {
	Run(ctx context.Context, opts search.Options) (*model.SearchResult, error)
}

// SearchStep runs the search and copies its outcome into the pipeline's
// result.
//
// Design decision: The step owns its own timeout rather than relying on the
// pipeline context, so that a search that runs out of time is reported as
// cancelled while the later steps still get to save and report it.
type SearchStep struct {
	// runner performs the search.
	runner Runner

	// opts are the search options. Start and Destination are taken from
	// the pipeline's result when left empty.
	opts search.Options

	// timeout bounds the search. Zero means no limit beyond ctx.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// SearchStepOption configures a SearchStep.
type SearchStepOption func(*SearchStep)

// WithSearchTimeout bounds the search with a deadline.
func WithSearchTimeout(d time.Duration) SearchStepOption {
	return func(s *SearchStep) {
		s.timeout = d
	}
}

// WithSearchLogger sets a custom logger for the search step.
func WithSearchLogger(logger *slog.Logger) SearchStepOption {
	return func(s *SearchStep) {
		s.logger = logger
	}
}

// NewSearchStep creates a new search step.
func NewSearchStep(runner Runner, opts search.Options, stepOpts ...SearchStepOption) *SearchStep {
	s := &SearchStep{
		runner: runner,
		opts:   opts,
		logger: slog.Default(),
	}

	for _, opt := range stepOpts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return "search"
}

// Do executes the search step.
func (s *SearchStep) Do(ctx context.Context, result *model.SearchResult) error {
	opts := s.opts
	if opts.Start == "" {
		opts.Start = result.Start
	}
	if opts.Destination == "" {
		opts.Destination = result.Destination
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	r, err := s.runner.Run(ctx, opts)
	if r == nil {
		if err == nil {
			err = errors.New("search returned no result")
		}
		return err
	}

	id := result.ID
	*result = *r
	if result.ID == "" {
		result.ID = id
	}

	s.logger.Info("search finished",
		"outcome", result.Outcome.String(),
		"steps", result.Steps(),
		"path_length", len(result.Path),
		"elapsed", result.Elapsed,
	)

	return err
}

// Saver persists finished searches. *database.HistoryDB implements it.
type Saver interface {
	SaveSearch(ctx context.Context, result *model.SearchResult) (string, error)
}

// SaveStep stores the result in the history database.
type SaveStep struct {
	saver  Saver
	logger *slog.Logger
}

// NewSaveStep creates a new save step.
func NewSaveStep(saver Saver, logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStep{saver: saver, logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do executes the save step. A search that never started is not saved.
func (s *SaveStep) Do(ctx context.Context, result *model.SearchResult) error {
	if result.Outcome == model.OutcomeUnknown {
		s.logger.Debug("skipping save of unfinished search")
		return nil
	}

	// Saving must not be interrupted by the search deadline having passed.
	id, err := s.saver.SaveSearch(context.WithoutCancel(ctx), result)
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}

	s.logger.Debug("search saved", "id", id)
	return nil
}

// ReportStep writes the result with a report writer.
type ReportStep struct {
	writer report.Writer
}

// NewReportStep creates a new report step.
func NewReportStep(writer report.Writer) *ReportStep {
	return &ReportStep{writer: writer}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do executes the report step.
func (s *ReportStep) Do(_ context.Context, result *model.SearchResult) error {
	if _, err := s.writer.Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Timeout bounds the search step.
	Timeout time.Duration

	// Saver stores finished searches. Nil disables saving.
	Saver Saver

	// Writer renders the result. Nil disables reporting.
	Writer report.Writer

	// Logger is passed to the steps.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineTimeout sets the search timeout.
func WithPipelineTimeout(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Timeout = d
	}
}

// WithPipelineSaver enables saving to the history database.
func WithPipelineSaver(saver Saver) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Saver = saver
	}
}

// WithPipelineWriter enables report writing.
func WithPipelineWriter(w report.Writer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Writer = w
	}
}

// WithPipelineLogger sets the logger used by the steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates the standard search pipeline: search, then save,
// then report. Saving comes first so the report can show the search ID.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineTimeout, etc).
func DefaultPipeline(runner Runner, opts search.Options, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := New(append([]Option{WithContinueOnError(true)}, pipelineOpts...)...)
	p.AddStep(NewSearchStep(runner, opts,
		WithSearchTimeout(cfg.Timeout),
		WithSearchLogger(cfg.Logger),
	))
	if cfg.Saver != nil {
		p.AddStep(NewSaveStep(cfg.Saver, cfg.Logger))
	}
	if cfg.Writer != nil {
		p.AddStep(NewReportStep(cfg.Writer))
	}

	return p
}
