package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nao1215/wikid/internal/config"
	"github.com/nao1215/wikid/internal/crawler"
	"github.com/nao1215/wikid/internal/database"
	"github.com/nao1215/wikid/internal/model"
	"github.com/nao1215/wikid/internal/pipeline"
	"github.com/nao1215/wikid/internal/search"
	"github.com/spf13/cobra"
)

// pairSeparator separates start and destination on a line of a pairs file.
const pairSeparator = "|"

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <pairs-file>",
		Short: "Run searches for many start/destination pairs",
		Long: `Batch reads start/destination pairs from a file and searches each of them.

Each line holds one pair separated by "|". Blank lines and lines starting
with "#" are skipped. Use "-" to read pairs from standard input.

Every search gets its own graph. Searches run concurrently up to
--parallel, and their reports are written in the order of the file.

Example pairs file:
  # start | destination
  Tent | Mental health
  https://en.wikipedia.org/wiki/Coffee | Sleep

Examples:
  # Run all pairs with two searches at a time
  wikid batch pairs.txt

  # Run four searches at a time and write one JSON report per line
  wikid batch --parallel 4 --json pairs.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runBatchCmd,
	}

	cmd.Flags().IntP("parallel", "P", 2,
		"Number of searches running at the same time")
	addSearchFlags(cmd)

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	parallel, err := cmd.Flags().GetInt("parallel")
	if err != nil {
		return err
	}
	if parallel <= 0 {
		return errors.New("--parallel must be positive")
	}

	raw, err := readPairsFile(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("no pairs found in %s", args[0])
	}

	// Start and destination are validated per pair below.
	cfg, err := buildConfig(cmd, raw[0].start, raw[0].destination)
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

	return runBatch(ctx, cfg, raw, parallel, cmd.OutOrStdout(), logger)
}

// rawPair is a line of a pairs file before resolution.
type rawPair struct {
	start       string
	destination string
}

// readPairsFile reads pairs from path, or from stdin when path is "-".
func readPairsFile(path string, stdin io.Reader) ([]rawPair, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path) //nolint:gosec // User-provided pairs file is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to open pairs file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parsePairs(r)
}

// parsePairs parses "start | destination" lines.
func parsePairs(r io.Reader) ([]rawPair, error) {
	pairs := make([]rawPair, 0)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		start, destination, ok := strings.Cut(line, pairSeparator)
		start = strings.TrimSpace(start)
		destination = strings.TrimSpace(destination)
		if !ok || start == "" || destination == "" {
			return nil, fmt.Errorf("line %d: expected \"start %s destination\", got %q", lineNo, pairSeparator, line)
		}
		pairs = append(pairs, rawPair{start: start, destination: destination})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pairs: %w", err)
	}
	return pairs, nil
}

// runBatch searches every pair and writes the reports in input order.
func runBatch(ctx context.Context, cfg *config.Config, raw []rawPair, parallel int, stdout io.Writer, logger *slog.Logger) error {
	profile, err := cfg.Profiles.GetProfile(cfg.Profile)
	if err != nil {
		return err
	}

	pairs := make([]pipeline.Pair, 0, len(raw))
	options := make(map[pipeline.Pair]search.Options, len(raw))
	for i, rp := range raw {
		start, err := crawler.ResolveDocument(cfg.BaseURL, rp.start)
		if err != nil {
			return fmt.Errorf("pair %d: invalid start document %q: %w", i+1, rp.start, err)
		}
		destination, err := crawler.ResolveDocument(cfg.BaseURL, rp.destination)
		if err != nil {
			return fmt.Errorf("pair %d: invalid destination document %q: %w", i+1, rp.destination, err)
		}

		pair := pipeline.Pair{Start: start, Destination: destination}
		opts := pairOptions(cfg, start, destination)
		opts.StartAlias = profile.Aliases[rp.start]
		opts.DestinationAlias = profile.Aliases[rp.destination]
		pairs = append(pairs, pair)
		options[pair] = opts
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, client, logger)
	if err != nil {
		return err
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineTimeout(cfg.Timeout),
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

	// Reports are written after the batch so that concurrent searches do
	// not interleave their output.
	factory := func(pair pipeline.Pair) *pipeline.Pipeline {
		return pipeline.DefaultPipeline(engine, options[pair],
			[]pipeline.Option{pipeline.WithLogger(logger)},
			configOpts...,
		)
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithBatchLogger(logger),
		pipeline.WithConcurrency(parallel),
	)
	results, batchErr := bp.ProcessBatch(ctx, pairs)
	for outcome, n := range batchSummary(results) {
		logger.Info("batch outcome", "outcome", outcome.String(), "count", n)
	}

	output, closeOutput, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // best-effort close of the report file

	writer := newReportWriter(cfg, output)
	failed := 0
	for _, result := range results {
		if result == nil {
			continue
		}
		if !result.Succeeded() {
			failed++
		}
		if _, err := writer.Write(result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if batchErr != nil {
		return fmt.Errorf("batch interrupted: %w", batchErr)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d searches did not find a path", failed, len(results))
	}
	return nil
}

// batchSummary counts results by outcome.
func batchSummary(results []*model.SearchResult) map[model.Outcome]int {
	counts := make(map[model.Outcome]int)
	for _, r := range results {
		if r != nil {
			counts[r.Outcome]++
		}
	}
	return counts
}
