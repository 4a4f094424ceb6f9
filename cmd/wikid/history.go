package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/wikid/internal/config"
	"github.com/nao1215/wikid/internal/crawler"
	"github.com/nao1215/wikid/internal/database"
	"github.com/nao1215/wikid/internal/model"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of searches listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command shows searches stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [search-id]",
		Short: "Show past searches",
		Long: `History displays searches stored in the database.

Without arguments the most recent searches are listed. Pass a search ID,
or a unique prefix of one, to print the full report of that search.
Stored searches are shown as they were; they are never resumed.

Examples:
  # List the 20 most recent searches
  wikid history

  # List searches from a given start article
  wikid history --start Tent

  # Show one search as a Markdown report
  wikid history -m 3f2a9c

  # Delete a stored search
  wikid history --delete 3f2a9c`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List stored searches (default when no search ID is given)")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of searches to list (0 lists all)")
	cmd.Flags().String("start", "",
		"Only list searches from this start article")
	cmd.Flags().String("destination", "",
		"Only list searches to this destination article")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Article prefix that bare titles are resolved against")

	// Single search flags
	cmd.Flags().String("show", "",
		"Show the search with this ID (same as passing the ID as argument)")
	cmd.Flags().Bool("delete", false,
		"Delete the given search instead of showing it")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	showID, err := flags.GetString("show")
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if showID != "" && showID != args[0] {
			return errors.New("search ID given both as argument and with --show")
		}
		showID = args[0]
	}

	list, err := flags.GetBool("list")
	if err != nil {
		return err
	}
	deleteSearch, err := flags.GetBool("delete")
	if err != nil {
		return err
	}
	if deleteSearch && showID == "" {
		return errors.New("--delete requires a search ID")
	}
	if list && showID != "" {
		return errors.New("--list cannot be combined with a search ID")
	}

	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.DBDir = getDBDirFlag(cmd)
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	// Validate arguments before opening database
	// This prevents database lock issues when validation fails
	filter, err := historyFilter(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case deleteSearch:
		if err := db.DeleteSearch(ctx, showID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted search %s\n", showID)
		return nil
	case showID != "":
		return showSearch(ctx, db, cfg, showID, out)
	default:
		return listSearches(ctx, db, cfg, filter, out)
	}
}

// historyFilter builds the list filter from the command flags.
func historyFilter(cmd *cobra.Command) (database.ListFilter, error) {
	flags := cmd.Flags()
	var filter database.ListFilter

	limit, err := flags.GetInt("limit")
	if err != nil {
		return filter, err
	}
	if limit < 0 {
		return filter, errors.New("--limit must not be negative")
	}
	filter.Limit = limit

	baseURL, err := flags.GetString("base-url")
	if err != nil {
		return filter, err
	}

	start, err := flags.GetString("start")
	if err != nil {
		return filter, err
	}
	if start != "" {
		if filter.Start, err = crawler.ResolveDocument(baseURL, start); err != nil {
			return filter, fmt.Errorf("invalid start document %q: %w", start, err)
		}
	}

	destination, err := flags.GetString("destination")
	if err != nil {
		return filter, err
	}
	if destination != "" {
		if filter.Destination, err = crawler.ResolveDocument(baseURL, destination); err != nil {
			return filter, fmt.Errorf("invalid destination document %q: %w", destination, err)
		}
	}

	return filter, nil
}

// showSearch prints one stored search with the report writers.
func showSearch(ctx context.Context, db *database.HistoryDB, cfg *config.Config, id string, out io.Writer) error {
	result, err := db.GetSearch(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrSearchNotFound) {
			return fmt.Errorf("no stored search matches %q (use 'wikid history' to list IDs)", id)
		}
		return err
	}

	_, err = newReportWriter(cfg, out).Write(result)
	return err
}

// listSearches prints a summary line per stored search.
func listSearches(ctx context.Context, db *database.HistoryDB, cfg *config.Config, filter database.ListFilter, out io.Writer) error {
	summaries, err := db.ListSearches(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list searches: %w", err)
	}

	switch {
	case cfg.JSONReport:
		return writeSummariesJSON(out, summaries)
	case cfg.MarkdownReport:
		return writeSummariesMarkdown(out, summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No searches stored yet. Run 'wikid search <start> <destination>' first.")
		return nil
	}

	fmt.Fprintf(out, "%-8s  %-19s  %-18s  %5s  %s\n", "ID", "TIME", "OUTCOME", "STEPS", "ROUTE")
	fmt.Fprintln(out, strings.Repeat("-", 78))
	for _, s := range summaries {
		fmt.Fprintf(out, "%-8s  %-19s  %-18s  %5d  %s\n",
			shortID(s.ID),
			s.Timestamp.Local().Format("2006-01-02 15:04:05"),
			s.Outcome,
			s.Steps,
			route(s),
		)
	}
	return nil
}

// shortID returns the first eight characters of a search ID, enough to
// pass back as a unique prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// route renders a stored search as "Start -> ... -> Destination".
func route(s database.SearchSummary) string {
	if len(s.Path) == 0 {
		return s.Start.Label() + " -> ? -> " + s.Destination.Label()
	}
	labels := make([]string, len(s.Path))
	for i, id := range s.Path {
		labels[i] = id.Label()
	}
	return strings.Join(labels, " -> ")
}

// summaryJSON is the JSON form of one listed search.
type summaryJSON struct {
	ID          string             `json:"id"`
	Start       model.DocumentID   `json:"start"`
	Destination model.DocumentID   `json:"destination"`
	Outcome     model.Outcome      `json:"outcome"`
	Path        []model.DocumentID `json:"path,omitempty"`
	Steps       int                `json:"steps"`
	ElapsedMS   int64              `json:"elapsed_ms"`
	Timestamp   string             `json:"timestamp"`
}

// writeSummariesJSON writes the listed searches as a JSON array.
func writeSummariesJSON(out io.Writer, summaries []database.SearchSummary) error {
	items := make([]summaryJSON, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, summaryJSON{
			ID:          s.ID,
			Start:       s.Start,
			Destination: s.Destination,
			Outcome:     s.Outcome,
			Path:        s.Path,
			Steps:       s.Steps,
			ElapsedMS:   s.Elapsed.Milliseconds(),
			Timestamp:   s.Timestamp.Format(time.RFC3339),
		})
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(items)
}

// writeSummariesMarkdown writes the listed searches as a Markdown table.
func writeSummariesMarkdown(out io.Writer, summaries []database.SearchSummary) error {
	md := markdown.NewMarkdown(out)
	md.H1("wikid Search History")
	md.PlainText("")

	if len(summaries) == 0 {
		md.PlainText("No searches stored yet.")
		return md.Build()
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			"`" + shortID(s.ID) + "`",
			s.Timestamp.Local().Format("2006-01-02 15:04:05"),
			s.Outcome.String(),
			strconv.Itoa(s.Steps),
			route(s),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Time", "Outcome", "Steps", "Route"},
		Rows:   rows,
	})
	return md.Build()
}
