// Package logging builds slog loggers for tunebot with a console handler
// for interactive use and a JSON handler for machine consumption. It also
// provides attribute helpers and the standardized field keys used across
// the bot so log lines stay greppable.
package logging
