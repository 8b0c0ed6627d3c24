// Package cache persists Telegram file ids for audio the bot has already
// delivered. A repeat query for the same video re-sends by file id instead
// of re-running extraction and upload. The store is the dispatcher-side
// persistent state closed first during shutdown.
package cache
