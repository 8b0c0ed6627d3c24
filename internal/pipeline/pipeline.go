package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tunebot/internal/cache"
	"tunebot/internal/logging"
	"tunebot/internal/textutil"
	"tunebot/internal/ytdlp"
)

// Backend resolves queries and produces transcoded audio files.
type Backend interface {
	Search(ctx context.Context, query string) (*ytdlp.Candidate, error)
	Fetch(ctx context.Context, cand *ytdlp.Candidate, destDir string) (string, error)
}

// Sender delivers text and audio to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendAudio(ctx context.Context, chatID int64, path, title, performer string) (string, error)
	SendCachedAudio(ctx context.Context, chatID int64, fileID, title, performer string) error
}

// DeliveryCache remembers file ids for audio already uploaded once.
type DeliveryCache interface {
	Lookup(ctx context.Context, videoID string) (*cache.Entry, error)
	Record(ctx context.Context, entry cache.Entry) error
}

// Artifacts hands out per-request working directories and removes them.
type Artifacts interface {
	NewRequestDir(requestID string) (string, error)
	Cleanup(dir string)
}

// Notifier pushes operator alerts for failures that were not the user's
// or the platform's doing.
type Notifier interface {
	NotifyError(ctx context.Context, err error, context string) error
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithNotifier routes unclassified failures to an operator channel.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) {
		p.notifier = n
	}
}

// Request carries one inbound query.
type Request struct {
	ChatID int64
	Query  string
}

// Pipeline executes the search-to-delivery flow for single requests.
type Pipeline struct {
	backend     Backend
	sender      Sender
	cache       DeliveryCache
	artifacts   Artifacts
	notifier    Notifier
	maxDuration int
	logger      *slog.Logger
}

// New assembles a pipeline. cache may be nil when the delivery cache is
// disabled; every other collaborator is required.
func New(backend Backend, sender Sender, deliveries DeliveryCache, artifacts Artifacts, maxDurationSeconds int, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if backend == nil {
		return nil, errors.New("pipeline: backend required")
	}
	if sender == nil {
		return nil, errors.New("pipeline: sender required")
	}
	if artifacts == nil {
		return nil, errors.New("pipeline: artifact store required")
	}
	if maxDurationSeconds <= 0 {
		return nil, fmt.Errorf("pipeline: invalid max duration %d", maxDurationSeconds)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		backend:     backend,
		sender:      sender,
		cache:       deliveries,
		artifacts:   artifacts,
		maxDuration: maxDurationSeconds,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Handle processes one request end to end and reports how it ended.
// Failures are converted into user replies here; none propagate.
func (p *Pipeline) Handle(ctx context.Context, req Request) Outcome {
	requestID := uuid.NewString()
	query := strings.TrimSpace(req.Query)
	log := p.logger.With(
		logging.String(logging.FieldRequestID, requestID),
		logging.Int64(logging.FieldChatID, req.ChatID),
		logging.String(logging.FieldQuery, query),
	)

	if query == "" {
		p.reply(ctx, log, req.ChatID, msgEmptyQuery)
		return OutcomeEmptyQuery
	}

	p.reply(ctx, log, req.ChatID, fmt.Sprintf(msgSearchingFmt, query))

	cand, err := p.backend.Search(ctx, query)
	if err != nil {
		log.Error("search failed", logging.Error(err))
		p.alert(ctx, log, err, "search")
		p.reply(ctx, log, req.ChatID, msgInternalError)
		return OutcomeInternalError
	}
	if cand == nil {
		log.Info("no candidates", logging.String(logging.FieldOutcome, OutcomeNotFound.String()))
		p.reply(ctx, log, req.ChatID, msgNotFound)
		return OutcomeNotFound
	}

	log = log.With(logging.String(logging.FieldVideoID, cand.ID))
	if cand.DurationSeconds() > p.maxDuration {
		log.Info("candidate rejected",
			logging.Int("duration_seconds", cand.DurationSeconds()),
			logging.String(logging.FieldOutcome, OutcomeTooLong.String()))
		p.reply(ctx, log, req.ChatID, msgTooLong)
		return OutcomeTooLong
	}

	title, performer := audioMeta(cand, query)

	if outcome, ok := p.sendFromCache(ctx, log, req.ChatID, cand.ID); ok {
		return outcome
	}

	dir, err := p.artifacts.NewRequestDir(requestID)
	if err != nil {
		log.Error("create request dir failed", logging.Error(err))
		p.alert(ctx, log, err, "artifact workspace")
		p.reply(ctx, log, req.ChatID, msgInternalError)
		return OutcomeInternalError
	}
	defer p.artifacts.Cleanup(dir)

	path, err := p.backend.Fetch(ctx, cand, dir)
	if err != nil {
		return p.handleFetchError(ctx, log, req.ChatID, err)
	}

	fileID, err := p.sender.SendAudio(ctx, req.ChatID, path, title, performer)
	if err != nil {
		log.Error("send audio failed", logging.Error(err),
			logging.String(logging.FieldArtifact, path))
		p.alert(ctx, log, err, "audio upload")
		p.reply(ctx, log, req.ChatID, msgInternalError)
		return OutcomeInternalError
	}

	p.recordDelivery(ctx, log, cache.Entry{
		VideoID:   cand.ID,
		Query:     query,
		FileID:    fileID,
		Title:     title,
		Performer: performer,
	})

	log.Info("audio delivered", logging.String(logging.FieldOutcome, OutcomeDelivered.String()))
	return OutcomeDelivered
}

func (p *Pipeline) sendFromCache(ctx context.Context, log *slog.Logger, chatID int64, videoID string) (Outcome, bool) {
	if p.cache == nil {
		return 0, false
	}
	entry, err := p.cache.Lookup(ctx, videoID)
	if err != nil {
		log.Warn("cache lookup failed", logging.Error(err))
		return 0, false
	}
	if entry == nil {
		return 0, false
	}
	if err := p.sender.SendCachedAudio(ctx, chatID, entry.FileID, entry.Title, entry.Performer); err != nil {
		// A stale file id falls through to a fresh fetch.
		log.Warn("cached send failed", logging.Error(err))
		return 0, false
	}
	log.Info("audio delivered from cache",
		logging.String(logging.FieldOutcome, OutcomeDeliveredFromCache.String()))
	return OutcomeDeliveredFromCache, true
}

func (p *Pipeline) handleFetchError(ctx context.Context, log *slog.Logger, chatID int64, err error) Outcome {
	var dlErr *ytdlp.DownloadError
	switch {
	case errors.As(err, &dlErr) && dlErr.TooLarge:
		log.Info("artifact exceeds size limit",
			logging.String(logging.FieldOutcome, OutcomeTooLarge.String()))
		p.reply(ctx, log, chatID, msgTooLarge)
		return OutcomeTooLarge
	case errors.As(err, &dlErr):
		log.Error("download failed", logging.Error(dlErr))
		p.reply(ctx, log, chatID, fmt.Sprintf(msgDownloadFmt, dlErr.Detail))
		return OutcomeExtractionFailed
	case errors.Is(err, ytdlp.ErrNotProduced):
		log.Error("extractor produced no file", logging.Error(err))
		p.reply(ctx, log, chatID, msgNotProcessed)
		return OutcomeProcessingFailed
	default:
		log.Error("fetch failed", logging.Error(err))
		p.alert(ctx, log, err, "fetch")
		p.reply(ctx, log, chatID, msgInternalError)
		return OutcomeInternalError
	}
}

func (p *Pipeline) recordDelivery(ctx context.Context, log *slog.Logger, entry cache.Entry) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Record(ctx, entry); err != nil {
		log.Warn("cache record failed", logging.Error(err))
	}
}

// alert is best-effort: operator notifications never change an outcome.
func (p *Pipeline) alert(ctx context.Context, log *slog.Logger, err error, label string) {
	if p.notifier == nil {
		return
	}
	if nerr := p.notifier.NotifyError(ctx, err, label); nerr != nil {
		log.Warn("operator notification failed", logging.Error(nerr))
	}
}

func (p *Pipeline) reply(ctx context.Context, log *slog.Logger, chatID int64, text string) {
	if err := p.sender.SendMessage(ctx, chatID, text); err != nil {
		log.Warn("send message failed", logging.Error(err))
	}
}

func audioMeta(cand *ytdlp.Candidate, query string) (title, performer string) {
	title = strings.TrimSpace(cand.Title)
	if title == "" {
		title = textutil.TitleCase(query)
	}
	if title == "" {
		title = fallbackTitle
	}
	performer = strings.TrimSpace(cand.Uploader)
	if performer == "" {
		performer = fallbackPerformer
	}
	return textutil.Truncate(title, 64), textutil.Truncate(performer, 64)
}
