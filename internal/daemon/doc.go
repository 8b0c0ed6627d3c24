// Package daemon coordinates the bot's long-running services and enforces
// single-instance execution. Shutdown is idempotent and always tears the
// services down in the same order: stop the dispatcher and wait for
// in-flight requests, close the delivery cache, then close the chat
// session.
package daemon
