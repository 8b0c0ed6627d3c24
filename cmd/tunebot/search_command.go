package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Resolve a query to its top candidate without downloading",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			extractor, err := newExtractor(cfg)
			if err != nil {
				return err
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			cand, err := extractor.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cand == nil {
				fmt.Fprintln(out, "No results.")
				return nil
			}

			fmt.Fprintf(out, "ID:        %s\n", cand.ID)
			fmt.Fprintf(out, "Title:     %s\n", cand.Title)
			fmt.Fprintf(out, "Uploader:  %s\n", cand.Uploader)
			fmt.Fprintf(out, "Duration:  %s\n", formatDuration(cand.DurationSeconds()))
			fmt.Fprintf(out, "URL:       %s\n", cand.URL())
			if cand.DurationSeconds() > cfg.Extractor.MaxDurationSeconds {
				fmt.Fprintf(out, "Note: exceeds the %d second duration limit; the bot would reject it\n",
					cfg.Extractor.MaxDurationSeconds)
			}
			return nil
		},
	}
}
