// Package telegram implements the Telegram Bot API channel for
// ideavault. It receives idea submissions (text, voice, photos,
// documents) via long polling or webhook, pushes them to the bot
// inbox, and delivers replies with optional inline keyboards.
package telegram
