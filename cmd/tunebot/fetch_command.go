package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch <query>",
		Short: "Resolve a query and download the audio into the download directory",
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
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Searching: %s\n", query)

			cand, err := extractor.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			if cand == nil {
				return fmt.Errorf("no results for %q", query)
			}
			fmt.Fprintf(out, "Found: %s (%s, %s)\n", cand.Title, cand.Uploader, formatDuration(cand.DurationSeconds()))

			if !force && cand.DurationSeconds() > cfg.Extractor.MaxDurationSeconds {
				return fmt.Errorf("candidate runs %s, over the %d second limit (use --force to fetch anyway)",
					formatDuration(cand.DurationSeconds()), cfg.Extractor.MaxDurationSeconds)
			}

			path, err := extractor.Fetch(cmd.Context(), cand, cfg.Paths.DownloadDir)
			if err != nil {
				return err
			}
			path = renameForDisplay(path, cand.Title)
			info, statErr := os.Stat(path)
			if statErr != nil {
				return fmt.Errorf("downloaded file vanished: %w", statErr)
			}
			fmt.Fprintf(out, "Saved %s (%s)\n", path, humanize.IBytes(uint64(info.Size())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Fetch even when the candidate exceeds the duration limit")
	return cmd
}
