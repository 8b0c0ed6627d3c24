package daemonrun

import (
	"testing"
	"time"

	"tunebot/internal/config"
	"tunebot/internal/telegram"
)

func TestTelegramConfigUnits(t *testing.T) {
	cfg := config.Default()
	cfg.Telegram.BotToken = "123456:test-token"
	cfg.Telegram.PollTimeout = 25
	cfg.Telegram.SendTimeout = 180

	got := telegramConfig(&cfg)

	// Poll timeout is forwarded to the Bot API as plain seconds.
	if got.PollTimeout != 25 {
		t.Fatalf("PollTimeout = %d, want 25", got.PollTimeout)
	}
	if got.SendTimeout != 180*time.Second {
		t.Fatalf("SendTimeout = %s, want 3m0s", got.SendTimeout)
	}
	if got.Token != cfg.Telegram.BotToken || got.BaseURL != cfg.Telegram.APIBaseURL {
		t.Fatalf("unexpected transport config: %+v", got)
	}

	client, err := telegram.New(got)
	if err != nil {
		t.Fatalf("telegram.New rejected the mapped config: %v", err)
	}
	client.Close()
}
