// Package config loads, normalizes, and validates tunebot's TOML
// configuration. Paths are tilde-expanded and made absolute during load;
// missing values fall back to repository defaults, and the bot token may be
// supplied through the environment instead of the file.
package config
