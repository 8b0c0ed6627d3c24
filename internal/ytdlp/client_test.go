package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeExecutor struct {
	lastBinary string
	lastArgs   []string
	stdout     []string
	stderr     []string
	err        error
	onRun      func(args []string)
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	f.lastBinary = binary
	f.lastArgs = args
	if f.onRun != nil {
		f.onRun(args)
	}
	for _, line := range f.stdout {
		if onStdout != nil {
			onStdout(line)
		}
	}
	for _, line := range f.stderr {
		if onStderr != nil {
			onStderr(line)
		}
	}
	return f.err
}

func newTestClient(t *testing.T, exec *fakeExecutor, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		Binary:        "yt-dlp",
		GeoBypass:     true,
		PlayerClient:  "android",
		MaxFilesizeMB: 50,
		SearchTimeout: 5 * time.Second,
		FetchTimeout:  5 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	client, err := New(cfg, WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestSearchParsesCandidate(t *testing.T) {
	exec := &fakeExecutor{
		stdout: []string{`{"id":"abc123","title":"Test Song","uploader":"Test Artist","duration":187.5,"webpage_url":"https://youtube.com/watch?v=abc123"}`},
	}
	client := newTestClient(t, exec, nil)

	cand, err := client.Search(context.Background(), "test song")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if cand == nil {
		t.Fatal("expected candidate")
	}
	if cand.ID != "abc123" || cand.Title != "Test Song" || cand.Uploader != "Test Artist" {
		t.Fatalf("unexpected candidate: %+v", cand)
	}
	if cand.DurationSeconds() != 187 {
		t.Fatalf("DurationSeconds = %d, want 187", cand.DurationSeconds())
	}

	joined := strings.Join(exec.lastArgs, " ")
	if !strings.Contains(joined, "ytsearch1:test song") {
		t.Fatalf("missing search directive in args: %v", exec.lastArgs)
	}
	if !strings.Contains(joined, "--skip-download") {
		t.Fatalf("search must not download: %v", exec.lastArgs)
	}
	if !strings.Contains(joined, "--geo-bypass") {
		t.Fatalf("missing geo bypass: %v", exec.lastArgs)
	}
	if !strings.Contains(joined, "youtube:player_client=android") {
		t.Fatalf("missing player client hint: %v", exec.lastArgs)
	}
}

func TestSearchReturnsNilForNoEntries(t *testing.T) {
	client := newTestClient(t, &fakeExecutor{}, nil)

	cand, err := client.Search(context.Background(), "gibberish no matches")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if cand != nil {
		t.Fatalf("expected nil candidate, got %+v", cand)
	}
}

func TestSearchClassifiesBackendFailure(t *testing.T) {
	exec := &fakeExecutor{
		stderr: []string{"ERROR: [youtube] unable to extract"},
		err:    errors.New("exit status 1"),
	}
	client := newTestClient(t, exec, nil)

	_, err := client.Search(context.Background(), "anything")
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if dlErr.TooLarge {
		t.Fatal("extraction failure must not classify as too large")
	}
	if !strings.Contains(dlErr.Detail, "unable to extract") {
		t.Fatalf("detail lost: %q", dlErr.Detail)
	}
}

func TestFetchReturnsProducedFile(t *testing.T) {
	dest := t.TempDir()
	exec := &fakeExecutor{
		onRun: func(args []string) {
			if err := os.WriteFile(filepath.Join(dest, "abc123.mp3"), []byte("mp3"), 0o644); err != nil {
				t.Fatalf("write fake artifact: %v", err)
			}
		},
	}
	client := newTestClient(t, exec, nil)

	cand := &Candidate{ID: "abc123", WebpageURL: "https://youtube.com/watch?v=abc123"}
	path, err := client.Fetch(context.Background(), cand, dest)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != filepath.Join(dest, "abc123.mp3") {
		t.Fatalf("path = %q", path)
	}

	joined := strings.Join(exec.lastArgs, " ")
	if !strings.Contains(joined, "--audio-format mp3") {
		t.Fatalf("missing transcode args: %v", exec.lastArgs)
	}
	if !strings.Contains(joined, "--max-filesize 50m") {
		t.Fatalf("missing size policy: %v", exec.lastArgs)
	}
	if !strings.Contains(joined, "https://youtube.com/watch?v=abc123") {
		t.Fatalf("fetch must use the pinned candidate URL: %v", exec.lastArgs)
	}
	if strings.Contains(joined, "ytsearch1:") {
		t.Fatalf("fetch must not re-run the search: %v", exec.lastArgs)
	}
}

func TestFetchClassifiesTooLarge(t *testing.T) {
	exec := &fakeExecutor{
		stderr: []string{"ERROR: File is larger than max-filesize (52428800 bytes)"},
		err:    errors.New("exit status 1"),
	}
	client := newTestClient(t, exec, nil)

	_, err := client.Fetch(context.Background(), &Candidate{ID: "abc123"}, t.TempDir())
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if !dlErr.TooLarge {
		t.Fatalf("size marker not classified: %+v", dlErr)
	}
}

func TestFetchDetectsSkippedOversizeWithoutExitError(t *testing.T) {
	// Newer yt-dlp releases skip oversized files and still exit zero.
	exec := &fakeExecutor{
		stdout: []string{"File is larger than max-filesize, skipping"},
	}
	client := newTestClient(t, exec, nil)

	_, err := client.Fetch(context.Background(), &Candidate{ID: "abc123"}, t.TempDir())
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) || !dlErr.TooLarge {
		t.Fatalf("expected too-large DownloadError, got %v", err)
	}
}

func TestFetchReportsNotProduced(t *testing.T) {
	client := newTestClient(t, &fakeExecutor{}, nil)

	_, err := client.Fetch(context.Background(), &Candidate{ID: "abc123"}, t.TempDir())
	if !errors.Is(err, ErrNotProduced) {
		t.Fatalf("expected ErrNotProduced, got %v", err)
	}
}

func TestCookiesFlagOnlyWhenConfigured(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec, func(cfg *Config) { cfg.CookiesFile = "/tmp/cookies.txt" })
	if _, err := client.Search(context.Background(), "query"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(strings.Join(exec.lastArgs, " "), "--cookies /tmp/cookies.txt") {
		t.Fatalf("cookies flag missing: %v", exec.lastArgs)
	}

	exec2 := &fakeExecutor{}
	client2 := newTestClient(t, exec2, nil)
	if _, err := client2.Search(context.Background(), "query"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if strings.Contains(strings.Join(exec2.lastArgs, " "), "--cookies") {
		t.Fatalf("unexpected cookies flag: %v", exec2.lastArgs)
	}
}

func TestCandidateURLFallsBackToID(t *testing.T) {
	cand := &Candidate{ID: "xyz"}
	if got := cand.URL(); got != "https://www.youtube.com/watch?v=xyz" {
		t.Fatalf("URL = %q", got)
	}
}
