package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpeg reports the ffmpeg binary the extractor will use for the
// MP3 transcode.
//
// yt-dlp prefers an ffmpeg that sits next to its own executable (the
// layout of bundled installs) and falls back to resolving "ffmpeg" from
// PATH. This helper mirrors that lookup so status output matches what
// actually runs.
func CheckFFmpeg(extractorCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Transcodes downloaded audio to MP3",
	}

	extractorBinary := strings.TrimSpace(extractorCommand)
	if extractorBinary != "" {
		if resolved, err := exec.LookPath(extractorBinary); err == nil {
			if candidate, ok := siblingFFmpeg(resolved); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					result.Command = candidate
					result.Available = true
					return result
				}
			}
		}
	}

	ffmpegName := "ffmpeg"
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func siblingFFmpeg(extractorPath string) (string, bool) {
	if extractorPath == "" {
		return "", false
	}
	dir := filepath.Dir(extractorPath)
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
