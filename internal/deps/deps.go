package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"tunebot/internal/config"
)

// Requirement defines an external dependency the bot relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig returns the external binaries the configured extractor needs.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.ExtractorBinary(),
			Description: "Searches the video platform and downloads audio",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckAll reports every dependency for the configured extractor,
// including the ffmpeg binary the transcode step needs.
func CheckAll(cfg *config.Config) []Status {
	statuses := CheckBinaries(ForConfig(cfg))
	return append(statuses, CheckFFmpeg(cfg.ExtractorBinary()))
}
