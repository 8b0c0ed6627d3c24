package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tunebot/internal/config"
	"tunebot/internal/textutil"
	"tunebot/internal/ytdlp"
)

func newExtractor(cfg *config.Config) (*ytdlp.Client, error) {
	return ytdlp.New(ytdlp.Config{
		Binary:        cfg.ExtractorBinary(),
		CookiesFile:   cfg.CookiesFileIfPresent(),
		GeoBypass:     cfg.Extractor.GeoBypass,
		PlayerClient:  cfg.Extractor.PlayerClient,
		MaxFilesizeMB: cfg.Extractor.MaxFilesizeMB,
		SearchTimeout: time.Duration(cfg.Extractor.SearchTimeout) * time.Second,
		FetchTimeout:  time.Duration(cfg.Extractor.FetchTimeout) * time.Second,
	})
}

// renameForDisplay gives a fetched artifact a human-readable filename
// derived from the candidate title. The id-based name is kept when the
// title sanitizes to nothing, the target already exists, or the rename
// fails.
func renameForDisplay(path, title string) string {
	name := textutil.SanitizeFileName(title)
	if name == "" {
		return path
	}
	target := filepath.Join(filepath.Dir(path), name+filepath.Ext(path))
	if target == path {
		return path
	}
	if _, err := os.Stat(target); err == nil {
		return path
	}
	if err := os.Rename(path, target); err != nil {
		return path
	}
	return target
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	minutes := int(d.Minutes())
	return fmt.Sprintf("%d:%02d", minutes, seconds-minutes*60)
}
