package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tunebot/internal/logging"
	"tunebot/internal/pipeline"
	"tunebot/internal/telegram"
)

const startReply = "🎵 Hi! Send me a song or artist name and I'll fetch the audio for you."

const helpReply = "🎵 Music bot\n\n" +
	"Just send me a song or artist name and I'll try to find and send you the audio.\n\n" +
	"Commands:\n" +
	"/start - Start the bot\n" +
	"/help - This help message"

// pollRetryDelay spaces out retries after a failed getUpdates call so a
// flaky network does not turn the loop into a busy spin.
const pollRetryDelay = 3 * time.Second

// Poller receives updates and sends replies. Satisfied by *telegram.Client.
type Poller interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Handler processes one query request. Satisfied by *pipeline.Pipeline.
type Handler interface {
	Handle(ctx context.Context, req pipeline.Request) pipeline.Outcome
}

// Dispatcher owns the long-poll loop and request fan-out.
type Dispatcher struct {
	poller  Poller
	handler Handler
	logger  *slog.Logger

	wg sync.WaitGroup
}

// New wires the dispatcher. logger may be nil.
func New(poller Poller, handler Handler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		poller:  poller,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "dispatcher"),
	}
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// handlers to finish. In-flight requests are not cancelled on shutdown;
// they complete against the background context.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher started")
	defer d.logger.Info("dispatcher stopped")

	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			break
		}

		updates, err := d.poller.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			d.logger.Warn("poll failed", logging.Error(err))
			select {
			case <-time.After(pollRetryDelay):
			case <-ctx.Done():
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			msg := update.Message
			if msg == nil || msg.Text == "" {
				continue
			}
			d.wg.Add(1)
			go func(m telegram.Message) {
				defer d.wg.Done()
				d.dispatch(m)
			}(*msg)
		}
	}

	d.wg.Wait()
	return nil
}

func (d *Dispatcher) dispatch(msg telegram.Message) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic",
				logging.Any("panic", r),
				logging.Int64(logging.FieldChatID, msg.Chat.ID))
		}
	}()

	ctx := context.Background()
	switch command(msg.Text) {
	case "start":
		d.reply(ctx, msg.Chat.ID, startReply)
	case "help":
		d.reply(ctx, msg.Chat.ID, helpReply)
	default:
		outcome := d.handler.Handle(ctx, pipeline.Request{ChatID: msg.Chat.ID, Query: msg.Text})
		d.logger.Info("request finished",
			logging.Int64(logging.FieldChatID, msg.Chat.ID),
			logging.String(logging.FieldOutcome, outcome.String()))
	}
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) {
	if err := d.poller.SendMessage(ctx, chatID, text); err != nil {
		d.logger.Warn("send reply failed", logging.Error(err),
			logging.Int64(logging.FieldChatID, chatID))
	}
}

// command extracts the bare command name from "/cmd" or "/cmd@botname",
// or returns "" for plain text.
func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name := strings.Fields(text)[0][1:]
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name)
}
