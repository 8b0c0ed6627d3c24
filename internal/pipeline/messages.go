package pipeline

// User-facing reply text. Every request produces at most one ack and
// exactly one terminal reply built from these.
const (
	msgEmptyQuery    = "Please enter a song or artist name."
	msgSearchingFmt  = "🔍 Searching: %s..."
	msgNotFound      = "❌ Nothing found. Try another query."
	msgTooLong       = "❌ The video is too long. Maximum duration is 15 minutes."
	msgTooLarge      = "❌ The file is too large (50MB maximum)."
	msgDownloadFmt   = "❌ Download error: %s"
	msgNotProcessed  = "❌ Could not process the audio file."
	msgInternalError = "❌ Something went wrong while processing your request."
)

const (
	fallbackTitle     = "Audio"
	fallbackPerformer = "Unknown artist"
)
