package preflight

import (
	"context"

	"tunebot/internal/config"
)

// Result reports the outcome of a single preflight check. Optional
// checks warn instead of blocking startup.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBotToken(cfg),
		CheckDirectoryAccess("Download directory", cfg.Paths.DownloadDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckFreeSpace("Download disk space", cfg.Paths.DownloadDir),
		CheckCookiesFile(cfg),
	}
	for _, status := range systemDeps(cfg) {
		results = append(results, status)
	}
	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Fatal filters results down to failed checks that block startup.
func Fatal(results []Result) []Result {
	var fatal []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			fatal = append(fatal, r)
		}
	}
	return fatal
}
