// Package channel defines the bridge between messaging platforms and
// the bot. It provides the Channel interface, message chunking, and
// allow-list filtering.
package channel

import (
	"context"

	"github.com/ideavault/ideavault/internal/core"
	"github.com/ideavault/ideavault/pkg/message"
)

// Channel is the bridge between a messaging platform and the bot.
// Every concrete channel (Telegram, etc.) must implement this
// interface.
//
// A channel receives messages from its platform, checks the
// allow-list, and pushes them to the bot via the inbox callback. It
// also receives outbound messages from the bot via Send().
type Channel interface {
	core.Module

	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg message.OutboundMessage) error

	// SetInbox gives the channel a function to push inbound messages
	// to the bot. Wiring calls this before Start().
	SetInbox(fn func(msg message.InboundMessage) error)
}

// TypingChannel is an optional interface for channels that can show a
// typing indicator while the pipeline works.
type TypingChannel interface {
	SendTyping(ctx context.Context, chat message.Chat) error
}

// CallbackChannel is an optional interface for channels that must
// acknowledge button presses (Telegram answerCallbackQuery).
type CallbackChannel interface {
	AckCallback(ctx context.Context, callbackID, text string) error
}
