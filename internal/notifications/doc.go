// Package notifications delivers operator alerts via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The bot emits lifecycle events and unclassified request errors;
// user-facing chat replies never go through this package.
package notifications
