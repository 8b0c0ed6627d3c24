// Package ytdlp wraps the yt-dlp CLI as the bot's extraction backend.
//
// Resolution is two-phase: Search fetches metadata for the best match of a
// query without downloading anything, and Fetch downloads exactly the
// candidate Search returned, transcoded to MP3. Pinning the candidate by ID
// between the phases keeps the duration check and the download pointed at
// the same video even when platform ranking shifts between calls.
package ytdlp
