package bot_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tunebot/internal/bot"
	"tunebot/internal/logging"
	"tunebot/internal/pipeline"
	"tunebot/internal/telegram"
)

type fakePoller struct {
	mu       sync.Mutex
	batches  [][]telegram.Update
	offsets  []int64
	messages []string
	pollErr  error
	cancel   context.CancelFunc
}

func (p *fakePoller) GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offsets = append(p.offsets, offset)
	if p.pollErr != nil {
		err := p.pollErr
		p.pollErr = nil
		return nil, err
	}
	if len(p.batches) == 0 {
		// Drained: stop the loop the way a signal would.
		if p.cancel != nil {
			p.cancel()
		}
		return nil, context.Canceled
	}
	batch := p.batches[0]
	p.batches = p.batches[1:]
	return batch, nil
}

func (p *fakePoller) SendMessage(ctx context.Context, chatID int64, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, text)
	return nil
}

func (p *fakePoller) sentMessages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.messages...)
}

type fakeHandler struct {
	mu       sync.Mutex
	requests []pipeline.Request
	panics   bool
}

func (h *fakeHandler) Handle(ctx context.Context, req pipeline.Request) pipeline.Outcome {
	h.mu.Lock()
	h.requests = append(h.requests, req)
	h.mu.Unlock()
	if h.panics {
		panic("handler exploded")
	}
	return pipeline.OutcomeDelivered
}

func (h *fakeHandler) handled() []pipeline.Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]pipeline.Request(nil), h.requests...)
}

func textUpdate(id, chatID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: id,
		Message:  &telegram.Message{Chat: telegram.Chat{ID: chatID}, Text: text},
	}
}

func runDispatcher(t *testing.T, poller *fakePoller, handler *fakeHandler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.cancel = cancel

	d := bot.New(poller, handler, logging.NewNop())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestCommandsGetFixedReplies(t *testing.T) {
	poller := &fakePoller{batches: [][]telegram.Update{{
		textUpdate(1, 10, "/start"),
		textUpdate(2, 10, "/help"),
	}}}
	handler := &fakeHandler{}

	runDispatcher(t, poller, handler)

	if len(handler.handled()) != 0 {
		t.Fatal("commands must not reach the pipeline")
	}
	msgs := poller.sentMessages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(msgs))
	}
	seen := map[string]bool{}
	for _, m := range msgs {
		seen[m] = true
	}
	if !seen["🎵 Hi! Send me a song or artist name and I'll fetch the audio for you."] {
		t.Fatalf("missing start reply: %v", msgs)
	}
}

func TestCommandWithBotSuffixIsRecognized(t *testing.T) {
	poller := &fakePoller{batches: [][]telegram.Update{{
		textUpdate(1, 10, "/start@tunebot"),
	}}}
	handler := &fakeHandler{}

	runDispatcher(t, poller, handler)

	if len(handler.handled()) != 0 {
		t.Fatal("suffixed command must not reach the pipeline")
	}
	if len(poller.sentMessages()) != 1 {
		t.Fatalf("expected 1 reply, got %v", poller.sentMessages())
	}
}

func TestTextIsRoutedToPipeline(t *testing.T) {
	poller := &fakePoller{batches: [][]telegram.Update{{
		textUpdate(5, 42, "bohemian rhapsody"),
	}}}
	handler := &fakeHandler{}

	runDispatcher(t, poller, handler)

	reqs := handler.handled()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 pipeline request, got %d", len(reqs))
	}
	if reqs[0].ChatID != 42 || reqs[0].Query != "bohemian rhapsody" {
		t.Fatalf("unexpected request: %+v", reqs[0])
	}
}

func TestOffsetAdvancesPastProcessedUpdates(t *testing.T) {
	poller := &fakePoller{batches: [][]telegram.Update{
		{textUpdate(100, 1, "a"), textUpdate(101, 1, "b")},
		{textUpdate(102, 1, "c")},
	}}
	handler := &fakeHandler{}

	runDispatcher(t, poller, handler)

	offsets := poller.offsets
	if len(offsets) < 3 {
		t.Fatalf("expected at least 3 polls, got %v", offsets)
	}
	if offsets[1] != 102 {
		t.Fatalf("second poll offset = %d, want 102", offsets[1])
	}
	if offsets[2] != 103 {
		t.Fatalf("third poll offset = %d, want 103", offsets[2])
	}
}

func TestUpdatesWithoutTextAreSkipped(t *testing.T) {
	poller := &fakePoller{batches: [][]telegram.Update{{
		{UpdateID: 1},
		{UpdateID: 2, Message: &telegram.Message{Chat: telegram.Chat{ID: 9}}},
	}}}
	handler := &fakeHandler{}

	runDispatcher(t, poller, handler)

	if len(handler.handled()) != 0 {
		t.Fatal("textless updates must be skipped")
	}
	if len(poller.offsets) < 2 || poller.offsets[1] != 3 {
		t.Fatalf("offset must still advance: %v", poller.offsets)
	}
}

func TestHandlerPanicDoesNotKillLoop(t *testing.T) {
	poller := &fakePoller{batches: [][]telegram.Update{
		{textUpdate(1, 1, "boom")},
		{textUpdate(2, 1, "after")},
	}}
	handler := &fakeHandler{panics: true}

	runDispatcher(t, poller, handler)

	if len(handler.handled()) != 2 {
		t.Fatalf("expected both messages dispatched, got %d", len(handler.handled()))
	}
}

func TestPollErrorRetriesAfterDelay(t *testing.T) {
	poller := &fakePoller{
		pollErr: errors.New("telegram: Bad Gateway"),
		batches: [][]telegram.Update{{textUpdate(1, 1, "q")}},
	}
	handler := &fakeHandler{}

	start := time.Now()
	runDispatcher(t, poller, handler)

	if len(handler.handled()) != 1 {
		t.Fatalf("expected handling to resume after a poll error, got %d requests", len(handler.handled()))
	}
	if time.Since(start) < 2*time.Second {
		t.Fatal("expected a retry delay after the poll error")
	}
}
