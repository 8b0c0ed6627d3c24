package preflight

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"tunebot/internal/config"
	"tunebot/internal/deps"
)

// minFreeSpaceBytes is the threshold below which the free-space check
// fails. One audio fetch tops out at 50MB, but WAL files and concurrent
// requests need headroom.
const minFreeSpaceBytes = 1 << 30

// CheckBotToken verifies the Telegram token is configured. It does not
// call getMe; network reachability is the poll loop's problem.
func CheckBotToken(cfg *config.Config) Result {
	const name = "Bot token"
	if strings.TrimSpace(cfg.Telegram.BotToken) == "" {
		return Result{Name: name, Detail: "missing (set telegram.bot_token or TUNEBOT_BOT_TOKEN)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// statfsFree reports free bytes on the filesystem holding path.
// Swappable for tests.
var statfsFree = func(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// CheckFreeSpace verifies the filesystem holding path has room for at
// least a handful of concurrent fetches. Low space warns rather than
// blocking startup; individual fetches still fail cleanly.
func CheckFreeSpace(name, path string) Result {
	free, err := statfsFree(path)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s free on %s", humanize.IBytes(free), path)
	if free < minFreeSpaceBytes {
		return Result{Name: name, Optional: true, Detail: detail + " (below 1 GiB minimum)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckCookiesFile reports whether the optional cookies file is usable.
// The cookies file is opportunistic: absent passes (extraction proceeds
// without it), but a path that exists and is unreadable or a directory
// fails so stale deployments surface instead of silently degrading
// extraction.
func CheckCookiesFile(cfg *config.Config) Result {
	const name = "Cookies file"
	path := strings.TrimSpace(cfg.Paths.CookiesFile)
	if path == "" {
		return Result{Name: name, Passed: true, Detail: "not configured"}
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not present, skipped)", expanded)}
		}
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (error: %v)", expanded, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (error: is a directory)", expanded)}
	}
	return Result{Name: name, Passed: true, Detail: expanded}
}

// systemDeps maps the external-binary statuses into preflight results.
func systemDeps(cfg *config.Config) []Result {
	var results []Result
	for _, status := range deps.CheckAll(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: status.Command}
		if !status.Available {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}
