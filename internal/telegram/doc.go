// Package telegram is a minimal Telegram Bot API client covering what the
// bot needs: getUpdates long polling, text replies, and audio uploads with
// generous transfer timeouts. Uploads and cached re-sends go through
// sendAudio; everything else is plain form posts.
package telegram
