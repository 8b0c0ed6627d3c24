// Command tunebot runs the Telegram music bot and its operator utilities:
// a foreground daemon (run), one-shot extraction helpers (search, fetch),
// delivery-cache inspection (cache), and configuration management
// (config, deps).
package main
