package ytdlp

import (
	"errors"
	"fmt"
	"strings"
)

// sizeMarker is the yt-dlp message fragment emitted when a download exceeds
// the configured --max-filesize.
const sizeMarker = "File is larger than max-filesize"

// ErrNotProduced indicates the extractor ran but no audio file appeared at
// the expected output location.
var ErrNotProduced = errors.New("extractor produced no audio file")

// DownloadError reports a failure surfaced by yt-dlp itself. TooLarge is set
// when the failure was the max-filesize policy; everything else carries the
// backend's own detail text.
type DownloadError struct {
	Detail   string
	TooLarge bool
}

func (e *DownloadError) Error() string {
	if e.TooLarge {
		return "download exceeds maximum file size"
	}
	if e.Detail == "" {
		return "download failed"
	}
	return fmt.Sprintf("download failed: %s", e.Detail)
}

func classifyDownloadError(detail string) *DownloadError {
	detail = strings.TrimSpace(detail)
	return &DownloadError{
		Detail:   detail,
		TooLarge: strings.Contains(detail, sizeMarker),
	}
}
