// Package bot runs the long-poll dispatch loop. It routes the two fixed
// commands, hands every other text message to the query pipeline in its
// own goroutine, and drains in-flight handlers before returning on
// shutdown.
package bot
