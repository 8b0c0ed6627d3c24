// Package artifact manages the transient download workspace. Every request
// gets its own directory named by request id, so concurrent requests for
// similarly titled tracks can never collide, and cleanup is a single
// recursive remove.
package artifact

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tunebot/internal/logging"
)

// Store owns the working directory transcoded audio lands in.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates the working directory if needed and returns a store
// rooted there.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("artifact root directory required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &Store{
		root:   root,
		logger: logging.NewComponentLogger(logger, "artifact"),
	}, nil
}

// Root returns the working directory path.
func (s *Store) Root() string {
	return s.root
}

// NewRequestDir creates a request-scoped directory under the root.
func (s *Store) NewRequestDir(requestID string) (string, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return "", errors.New("request id required")
	}
	dir := filepath.Join(s.root, requestID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create request directory: %w", err)
	}
	return dir, nil
}

// Cleanup removes a request directory and everything in it. Failures are
// logged but never propagated: cleanup is best-effort and must not change a
// request's outcome. Calling it again after the directory is gone is a no-op.
func (s *Store) Cleanup(dir string) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return
	}
	rel, err := filepath.Rel(s.root, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		s.logger.Warn("refusing to clean path outside artifact root",
			logging.Args(logging.String("path", dir))...)
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Error("artifact cleanup failed",
			logging.Args(
				logging.Error(err),
				logging.String("path", dir),
				logging.String(logging.FieldEventType, "artifact_cleanup_failed"),
			)...)
		return
	}
	s.logger.Debug("artifact removed", logging.Args(logging.String("path", dir))...)
}

// SweepLeftovers removes request directories abandoned by earlier runs.
// Artifacts are request-scoped, so anything present at startup is an orphan.
// Returns the number of entries removed.
func (s *Store) SweepLeftovers() int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Warn("sweep read failed", logging.Args(logging.Error(err))...)
		return 0
	}
	removed := 0
	for _, entry := range entries {
		path := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.logger.Warn("sweep remove failed",
				logging.Args(logging.Error(err), logging.String("path", path))...)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("swept leftover artifacts", logging.Args(logging.Int("count", removed))...)
	}
	return removed
}
