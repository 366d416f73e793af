// Package bot is the glue between channels and the idea pipeline. It
// routes commands, captures submissions, and drives the clarify/enrich
// flow through inline-keyboard callbacks.
package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ideavault/ideavault/internal/channel"
	"github.com/ideavault/ideavault/internal/lifecycle"
	"github.com/ideavault/ideavault/pkg/message"
)

const (
	captureTimeout = 2 * time.Minute
	enrichTimeout  = 5 * time.Minute
)

// Bot handles inbound messages from a channel and replies through it.
type Bot struct {
	svc    *lifecycle.Service
	ch     channel.Channel
	allow  *channel.AllowList
	logger *slog.Logger
}

// New creates a Bot. The allow-list decides who may use /stats; message
// admission itself happens in the channel.
func New(svc *lifecycle.Service, ch channel.Channel, allow *channel.AllowList, logger *slog.Logger) *Bot {
	return &Bot{
		svc:    svc,
		ch:     ch,
		allow:  allow,
		logger: logger.With("component", "bot"),
	}
}

// HandleMessage is the channel inbox. It never returns an error for
// user mistakes; those become replies.
func (b *Bot) HandleMessage(msg message.InboundMessage) error {
	if msg.IsCallback() {
		ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
		defer cancel()
		b.handleCallback(ctx, msg)
		return nil
	}

	text := strings.TrimSpace(msg.TextContent())
	if strings.HasPrefix(text, "/") && !msg.HasMedia() {
		ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
		defer cancel()
		b.handleCommand(ctx, msg, text)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
	defer cancel()
	b.handleCapture(ctx, msg)
	return nil
}

// reply sends a plain HTML-mode text reply, logging delivery failures.
func (b *Bot) reply(ctx context.Context, msg message.InboundMessage, text string) {
	b.send(ctx, msg, text, nil)
}

func (b *Bot) send(ctx context.Context, msg message.InboundMessage, text string, kb *message.Keyboard) {
	out := message.NewTextMessage(msg.Chat, text)
	out.Channel = msg.Channel
	out.Keyboard = kb
	out.Hints = &message.OutboundHints{ParseMode: "HTML", DisablePreview: true}
	if err := b.ch.Send(ctx, out); err != nil {
		b.logger.Error("sending reply failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (b *Bot) typing(ctx context.Context, msg message.InboundMessage) {
	if tc, ok := b.ch.(channel.TypingChannel); ok {
		if err := tc.SendTyping(ctx, msg.Chat); err != nil {
			b.logger.Debug("typing indicator failed", "error", err)
		}
	}
}

func (b *Bot) ack(ctx context.Context, msg message.InboundMessage, text string) {
	cc, ok := b.ch.(channel.CallbackChannel)
	if !ok || msg.Callback == nil {
		return
	}
	if err := cc.AckCallback(ctx, msg.Callback.ID, text); err != nil {
		b.logger.Debug("callback ack failed", "error", err)
	}
}

func parseID(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
