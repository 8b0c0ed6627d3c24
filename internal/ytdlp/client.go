package ytdlp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Candidate describes one search result's metadata.
type Candidate struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	Duration   float64 `json:"duration"`
	WebpageURL string  `json:"webpage_url"`
}

// DurationSeconds returns the candidate duration rounded down to whole seconds.
func (c *Candidate) DurationSeconds() int {
	if c == nil || c.Duration < 0 {
		return 0
	}
	return int(c.Duration)
}

// URL returns the address Fetch downloads. The webpage URL from search is
// preferred; the ID is enough to reconstruct one when it is missing.
func (c *Candidate) URL() string {
	if c == nil {
		return ""
	}
	if strings.TrimSpace(c.WebpageURL) != "" {
		return c.WebpageURL
	}
	return "https://www.youtube.com/watch?v=" + c.ID
}

// Config captures the extractor settings the client needs.
type Config struct {
	Binary        string
	CookiesFile   string
	GeoBypass     bool
	PlayerClient  string
	MaxFilesizeMB int
	SearchTimeout time.Duration
	FetchTimeout  time.Duration
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	cfg  Config
	exec Executor
}

// New constructs a yt-dlp client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.Binary = strings.TrimSpace(cfg.Binary)
	if cfg.Binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{cfg: cfg, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search resolves the best match for query without downloading. Returns
// (nil, nil) when the platform yields no entries.
func (c *Client) Search(ctx context.Context, query string) (*Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query required")
	}

	searchCtx := ctx
	if c.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, c.cfg.SearchTimeout)
		defer cancel()
	}

	args := c.commonArgs()
	args = append(args, "--dump-json", "--skip-download", "ytsearch1:"+query)

	var jsonLine string
	var stderrTail tailBuffer
	err := c.exec.Run(searchCtx, c.cfg.Binary, args, func(line string) {
		if jsonLine == "" && strings.HasPrefix(strings.TrimSpace(line), "{") {
			jsonLine = line
		}
	}, stderrTail.add)
	if err != nil {
		return nil, classifyDownloadError(firstNonEmpty(stderrTail.String(), err.Error()))
	}

	if jsonLine == "" {
		return nil, nil
	}

	var cand Candidate
	if err := json.Unmarshal([]byte(jsonLine), &cand); err != nil {
		return nil, fmt.Errorf("parse search metadata: %w", err)
	}
	if strings.TrimSpace(cand.ID) == "" {
		return nil, nil
	}
	return &cand, nil
}

// Fetch downloads the pinned candidate into destDir, transcoded to MP3, and
// returns the produced file path. Failures are reported as *DownloadError,
// or ErrNotProduced when the process succeeded but left no file behind.
func (c *Client) Fetch(ctx context.Context, cand *Candidate, destDir string) (string, error) {
	if cand == nil || strings.TrimSpace(cand.ID) == "" {
		return "", errors.New("candidate required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	fetchCtx := ctx
	if c.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
	}

	args := c.commonArgs()
	args = append(args,
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3",
		"-o", filepath.Join(destDir, "%(id)s.%(ext)s"),
	)
	if c.cfg.MaxFilesizeMB > 0 {
		args = append(args, "--max-filesize", fmt.Sprintf("%dm", c.cfg.MaxFilesizeMB))
	}
	args = append(args, cand.URL())

	var output tailBuffer
	runErr := c.exec.Run(fetchCtx, c.cfg.Binary, args, output.add, output.add)

	expected := filepath.Join(destDir, cand.ID+".mp3")
	if runErr != nil {
		return "", classifyDownloadError(firstNonEmpty(output.String(), runErr.Error()))
	}
	if _, err := os.Stat(expected); errors.Is(err, os.ErrNotExist) {
		// yt-dlp skips oversized files without a non-zero exit.
		if strings.Contains(output.String(), sizeMarker) {
			return "", classifyDownloadError(output.String())
		}
		return "", ErrNotProduced
	} else if err != nil {
		return "", fmt.Errorf("inspect fetch output: %w", err)
	}
	return expected, nil
}

func (c *Client) commonArgs() []string {
	args := []string{"--quiet", "--no-warnings", "--no-playlist"}
	if c.cfg.GeoBypass {
		args = append(args, "--geo-bypass")
	}
	if client := strings.TrimSpace(c.cfg.PlayerClient); client != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+client)
	}
	if cookies := strings.TrimSpace(c.cfg.CookiesFile); cookies != "" {
		args = append(args, "--cookies", cookies)
	}
	return args
}

// tailBuffer keeps the last few output lines for error reporting.
type tailBuffer struct {
	mu    sync.Mutex
	lines []string
}

const tailBufferLines = 20

func (b *tailBuffer) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > tailBufferLines {
		b.lines = b.lines[len(b.lines)-tailBufferLines:]
	}
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type commandExecutor struct{}

// maxLineBytes bounds scanner buffers; --dump-json metadata lines can run
// to several megabytes.
const maxLineBytes = 16 * 1024 * 1024

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			if forward != nil {
				forward(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, onStdout)
	go scan(stderr, onStderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
