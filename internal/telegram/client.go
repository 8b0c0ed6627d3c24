package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tunebot/internal/textutil"
)

// maxMetaRunes is the Telegram limit for audio title/performer fields.
const maxMetaRunes = 64

// Config captures the transport settings the client needs.
type Config struct {
	Token       string
	BaseURL     string
	PollTimeout int
	SendTimeout time.Duration
}

// Client talks to the Telegram Bot API over HTTP.
type Client struct {
	token       string
	baseURL     string
	pollTimeout int

	// short handles text posts; upload carries audio transfers with the
	// long per-phase budget large files need.
	short  *http.Client
	upload *http.Client
}

// New constructs a Bot API client.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("bot token required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api.telegram.org"
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 180 * time.Second
	}

	uploadTransport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: sendTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   30 * time.Second,
		ResponseHeaderTimeout: sendTimeout,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		token:       token,
		baseURL:     base,
		pollTimeout: pollTimeout,
		// Long-poll requests hold the connection open for pollTimeout, so
		// the overall budget must exceed it.
		short:  &http.Client{Timeout: time.Duration(pollTimeout+15) * time.Second},
		upload: &http.Client{Timeout: 2 * sendTimeout, Transport: uploadTransport},
	}, nil
}

// Close releases idle transport connections. Safe to call more than once.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.short.CloseIdleConnections()
	c.upload.CloseIdleConnections()
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// GetMe returns the bot's own identity. Used at startup to verify the
// token before polling begins.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	raw, err := c.postForm(ctx, c.short, "getMe", url.Values{})
	if err != nil {
		return nil, err
	}
	var me User
	if err := json.Unmarshal(raw, &me); err != nil {
		return nil, fmt.Errorf("parse getMe: %w", err)
	}
	return &me, nil
}

// GetUpdates long-polls for updates with IDs greater than or equal to offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	form := url.Values{}
	form.Set("timeout", strconv.Itoa(c.pollTimeout))
	form.Set("allowed_updates", `["message"]`)
	if offset > 0 {
		form.Set("offset", strconv.FormatInt(offset, 10))
	}

	raw, err := c.postForm(ctx, c.short, "getUpdates", form)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("parse updates: %w", err)
	}
	return updates, nil
}

// SendMessage posts a text reply to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)

	_, err := c.postForm(ctx, c.short, "sendMessage", form)
	return err
}

// SendAudio uploads the audio file at path to a chat and returns the file id
// Telegram assigned, for later cached re-sends. Title and performer are
// truncated to the API's 64-character limit.
func (c *Client) SendAudio(ctx context.Context, chatID int64, path, title, performer string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := writeAudioForm(writer, file, filepath.Base(path), chatID, title, performer)
		_ = writer.Close()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendAudio"), pr)
	if err != nil {
		return "", fmt.Errorf("build sendAudio request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	raw, err := c.do(c.upload, req)
	if err != nil {
		return "", err
	}

	var result audioResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("parse sendAudio response: %w", err)
	}
	if result.Audio == nil {
		return "", nil
	}
	return result.Audio.FileID, nil
}

func writeAudioForm(writer *multipart.Writer, file io.Reader, filename string, chatID int64, title, performer string) error {
	fields := map[string]string{
		"chat_id":   strconv.FormatInt(chatID, 10),
		"title":     textutil.Truncate(title, maxMetaRunes),
		"performer": textutil.Truncate(performer, maxMetaRunes),
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("write field %s: %w", key, err)
		}
	}
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return fmt.Errorf("create audio part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("stream audio: %w", err)
	}
	return nil
}

// SendCachedAudio re-sends previously uploaded audio by Telegram file id,
// avoiding a fresh extraction and upload.
func (c *Client) SendCachedAudio(ctx context.Context, chatID int64, fileID, title, performer string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("audio", fileID)
	if title = textutil.Truncate(title, maxMetaRunes); title != "" {
		form.Set("title", title)
	}
	if performer = textutil.Truncate(performer, maxMetaRunes); performer != "" {
		form.Set("performer", performer)
	}

	_, err := c.postForm(ctx, c.short, "sendAudio", form)
	return err
}

func (c *Client) postForm(ctx context.Context, client *http.Client, method string, form url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(client, req)
}

func (c *Client) do(client *http.Client, req *http.Request) (json.RawMessage, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read telegram response: %w", err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("parse telegram response (status %d): %w", resp.StatusCode, err)
	}
	if !api.OK {
		desc := strings.TrimSpace(api.Description)
		if desc == "" {
			desc = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("telegram: %s", desc)
	}
	return api.Result, nil
}
