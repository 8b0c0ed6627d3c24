// Package pipeline turns one free-text query into at most one delivered
// audio file. Each request resolves a single candidate, enforces the
// duration limit before any download, fetches and transcodes through the
// extractor, uploads the result, and removes its working directory no
// matter which branch fired. A request never retries and never lets a
// failure escape to the polling loop.
package pipeline
