package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/wikid/internal/config"
	"github.com/nao1215/wikid/internal/crawler"
	"github.com/spf13/cobra"
)

// NewFiltersCmd creates the filters command.
func NewFiltersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Show the link filter rules in effect",
		Long: `Filters prints the rules that decide which links become candidates.

The rules come from the built-in defaults, the configuration file and the
selected profile, exactly as a search would use them. Pass a URL with
--check to see whether it would be admitted.

Examples:
  # Show the default rules
  wikid filters

  # Show the rules of a profile
  wikid filters --profile german

  # Check a single link
  wikid filters --check https://en.wikipedia.org/wiki/File:Tent.jpg`,
		Args: cobra.NoArgs,
		RunE: runFiltersCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikid in current or home directory)")
	cmd.Flags().StringP("profile", "p", "",
		"Profile from the configuration file")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Article prefix that bare titles are resolved against")
	cmd.Flags().StringSlice("check", nil,
		"Link to test against the filter (repeatable)")

	return cmd
}

// runFiltersCmd executes the filters command.
func runFiltersCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return err
	}
	if cfg.Profile, err = flags.GetString("profile"); err != nil {
		return err
	}
	if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
		return err
	}
	checks, err := flags.GetStringSlice("check")
	if err != nil {
		return err
	}

	if err := applyConfigFile(cfg, flags.Changed); err != nil {
		return err
	}
	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	cfg.BaseURL = crawler.ArticlePrefix(cfg.BaseURL)

	filter := newFilter(cfg)
	out := cmd.OutOrStdout()
	printFilter(out, cfg, filter)

	if len(checks) > 0 {
		fmt.Fprintln(out)
		for _, link := range checks {
			if id, ok := filter.Filter(cfg.BaseURL, link); ok {
				fmt.Fprintf(out, "  allowed  %s\n", id)
			} else {
				fmt.Fprintf(out, "  rejected %s\n", link)
			}
		}
	}
	return nil
}

// printFilter writes the rules and predicates of filter.
func printFilter(out io.Writer, cfg *config.Config, filter *crawler.URLFilter) {
	rules := filter.Rules()

	if cfg.Profile != "" {
		fmt.Fprintf(out, "Profile:    %s\n", cfg.Profile)
	}
	fmt.Fprintf(out, "Base URL:   %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "Schemes:    %s\n", describeSet(rules.Schemes))
	fmt.Fprintf(out, "Domains:    %s\n", describeSet(rules.Domains))
	fmt.Fprintf(out, "File types: %s\n", describeFileTypes(rules.FileTypes))
	fmt.Fprintln(out, "Predicates:")
	for i, p := range filter.Predicates() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, p.Name())
	}
}

// describeSet renders a rule set; nil means any value.
func describeSet(values []string) string {
	if values == nil {
		return "(any)"
	}
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

// describeFileTypes renders file types, naming the empty extension.
func describeFileTypes(values []string) string {
	if values == nil {
		return "(any)"
	}
	named := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			v = "(no extension)"
		}
		named[i] = v
	}
	return describeSet(named)
}
