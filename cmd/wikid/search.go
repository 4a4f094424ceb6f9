package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/wikid/internal/config"
	"github.com/nao1215/wikid/internal/database"
	"github.com/nao1215/wikid/internal/model"
	"github.com/nao1215/wikid/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <start> <destination>",
		Short: "Find a path of links between two articles",
		Long: `Search walks the link graph from a start article towards a destination.

At each step the current article is fetched and its links are scored
against the destination by a similarity oracle. The best unexplored link
anywhere in the graph found so far is expanded next. When the destination
appears among the links, the strongest path from start to destination is
extracted and reported.

Start and destination accept either a full URL or a bare article title,
which is resolved against --base-url.

Examples:
  # Find a path between two Wikipedia articles
  wikid search Tent "Mental health"

  # Label the endpoints and add interests for scoring
  wikid search --start-alias Shelter --interest camping Tent Nature

  # Use an embedding model for scoring
  OPENAI_API_KEY=... wikid search --oracle embedding Tent "Mental health"

  # Output a Markdown report with a Mermaid graph
  wikid search -m -o report.md Tent "Mental health"

  # Use a profile from the configuration file
  wikid search --profile outdoors Tent Nature`,
		Args: cobra.ExactArgs(2),
		RunE: runSearchCmd,
	}

	cmd.Flags().String("start-alias", "",
		"Label used for the start article instead of its title")
	cmd.Flags().String("dest-alias", "",
		"Label used for the destination article instead of its title")
	addSearchFlags(cmd)

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0], args[1])
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runSearch(ctx, cfg, cmd.OutOrStdout(), logger)
}

// runSearch executes one search and writes its report.
func runSearch(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	opts, err := searchOptions(cfg)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, client, logger)
	if err != nil {
		return err
	}

	output, closeOutput, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // best-effort close of the report file

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineTimeout(cfg.Timeout),
		pipeline.WithPipelineWriter(newReportWriter(cfg, output)),
		pipeline.WithPipelineLogger(logger),
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		configOpts = append(configOpts, pipeline.WithPipelineSaver(db))
	}

	logger.Info("starting search",
		"start", opts.Start,
		"destination", opts.Destination,
		"oracle", cfg.Oracle,
		"max_candidates", opts.MaxCandidatesPerNode,
		"max_expansions", opts.MaxExpansions,
	)

	p := pipeline.DefaultPipeline(engine, opts,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		configOpts...,
	)

	result := model.NewSearchResult(opts.Start, opts.Destination)
	execErr := p.Execute(ctx, result)

	return resultError(result, execErr)
}
