package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/wikid/internal/config"
	"github.com/nao1215/wikid/internal/similarity"
	"github.com/spf13/cobra"
)

// NewScoreCmd creates the score command.
func NewScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <label> <destination-label>",
		Short: "Print the similarity score of two labels",
		Long: `Score prints the score the oracle gives a candidate label for a destination.

This is the number a search uses to rank links, which makes it useful to
tune interests or compare oracles before starting a search. Scores lie in
[0, 1]; interests can raise them up to 1.2.

Examples:
  # Score with the lexical oracle
  wikid score "Camping" "Mental health"

  # Score with interests
  wikid score --interest outdoors "Camping" "Mental health"

  # Score with an embedding model
  OPENAI_API_KEY=... wikid score --oracle embedding "Camping" "Mental health"`,
		Args: cobra.ExactArgs(2),
		RunE: runScoreCmd,
	}

	cmd.Flags().StringSliceP("interest", "i", nil,
		"Topical interest that boosts matching labels (repeatable)")
	cmd.Flags().StringP("oracle", "O", config.OracleLexical,
		"Similarity oracle: lexical or embedding")
	cmd.Flags().String("embedding-model", config.DefaultEmbeddingModel,
		"Embedding model used by the embedding oracle")
	cmd.Flags().String("embedding-url", "",
		"Base URL of an OpenAI-compatible embedding API")

	return cmd
}

// runScoreCmd executes the score command.
func runScoreCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.Start = args[0]
	cfg.Destination = args[1]
	cfg.APIKey = os.Getenv(config.APIKeyEnv)
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()
	var err error
	if cfg.Interests, err = flags.GetStringSlice("interest"); err != nil {
		return err
	}
	if cfg.Oracle, err = flags.GetString("oracle"); err != nil {
		return err
	}
	if cfg.EmbeddingModel, err = flags.GetString("embedding-model"); err != nil {
		return err
	}
	if cfg.EmbeddingBaseURL, err = flags.GetString("embedding-url"); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	oracle, err := newOracle(cfg, logger)
	if err != nil {
		return err
	}

	return printScore(cmd.Context(), cmd.OutOrStdout(), cfg, oracle)
}

// printScore writes the combined score and, for the lexical oracle, the
// score of every lexical measure.
func printScore(ctx context.Context, out io.Writer, cfg *config.Config, oracle similarity.Oracle) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, b := cfg.Start, cfg.Destination
	score := oracle.Score(ctx, a, b, cfg.Interests)

	if cfg.Oracle == config.OracleLexical {
		measures := []struct {
			name   string
			oracle similarity.Oracle
		}{
			{"exact match", similarity.ExactMatch},
			{"sequence ratio", similarity.SequenceRatio},
			{"token cosine", similarity.TokenCosine},
		}
		for _, m := range measures {
			fmt.Fprintf(out, "%-16s %.4f\n", m.name+":", m.oracle.Score(ctx, a, b, nil))
		}
	}
	if len(cfg.Interests) > 0 {
		fmt.Fprintf(out, "%-16s %.4f\n", "unboosted:", oracle.Score(ctx, a, b, nil))
	}
	fmt.Fprintf(out, "%-16s %.4f\n", "score:", score)
	return nil
}
