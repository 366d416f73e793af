package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/lifecycle"
	"github.com/ideavault/ideavault/pkg/message"
)

func (b *Bot) handleCapture(ctx context.Context, msg message.InboundMessage) {
	sub, err := submissionFromMessage(msg)
	if err != nil {
		b.reply(ctx, msg, EscapeHTML(err.Error()))
		return
	}

	b.typing(ctx, msg)
	b.reply(ctx, msg, "Processing your idea...")

	res, err := b.svc.Capture(ctx, sub)
	if err != nil {
		b.logger.Error("capture failed", "chat_id", msg.Chat.ID, "error", err)
		b.reply(ctx, msg, captureErrorText(err))
		return
	}

	switch res.Next {
	case lifecycle.StepClarify:
		text := fmt.Sprintf("Saved <b>%s</b>.", EscapeHTML(res.Idea.Title))
		if res.Question != "" {
			text += "\n\n" + EscapeHTML(res.Question)
		}
		b.send(ctx, msg, text, clarifyKeyboard(res.Idea.ID))
	case lifecycle.StepEnrich:
		b.runEnrich(ctx, msg, res.Idea.ID)
	}
}

func (b *Bot) runEnrich(ctx context.Context, msg message.InboundMessage, id string) {
	b.typing(ctx, msg)

	res, err := b.svc.Enrich(ctx, id, "")
	if err != nil {
		// A storage failure after a successful analysis still has a
		// brief worth showing.
		if errors.Is(err, idea.ErrStorage) && res != nil && res.Enrichment != nil {
			b.logger.Error("enrichment persisted partially", "idea_id", id, "error", err)
			b.send(ctx, msg, formatBrief(res)+"\n\n<i>Saving the brief failed; it is shown here but may be missing from storage.</i>", retryKeyboard("enrich", id))
			return
		}
		b.logger.Error("enrichment failed", "idea_id", id, "error", err)
		b.send(ctx, msg, enrichErrorText(err), retryKeyboard("enrich", id))
		return
	}

	b.send(ctx, msg, formatBrief(res), nil)
}

// submissionFromMessage turns channel content blocks into a pipeline
// submission. Captions count as text; a document with neither caption
// nor text gets a filename placeholder.
func submissionFromMessage(msg message.InboundMessage) (lifecycle.Submission, error) {
	sub := lifecycle.Submission{
		Source: msg.Channel,
		ChatID: parseID(msg.Chat.ID),
		UserID: parseID(msg.Sender.ID),
	}

	var text string
	for _, blk := range msg.Blocks {
		switch blk.Type {
		case message.BlockText:
			if text != "" {
				text += "\n"
			}
			text += blk.Text
		case message.BlockAudio:
			duration := time.Duration(blk.Duration) * time.Second
			if blk.IsVoice && duration > idea.MaxVoiceDuration {
				return sub, fmt.Errorf("voice notes longer than %d seconds are not supported, please send a shorter one", int(idea.MaxVoiceDuration.Seconds()))
			}
			sub.Attachments = append(sub.Attachments, idea.Attachment{
				Type:     idea.AttachmentAudio,
				URL:      blk.URL,
				Name:     blk.FileName,
				Size:     blk.Size,
				Duration: duration,
			})
			if blk.Caption != "" {
				text = joinText(text, blk.Caption)
			}
		case message.BlockImage:
			sub.Attachments = append(sub.Attachments, idea.Attachment{
				Type: idea.AttachmentImage,
				URL:  blk.URL,
				Size: blk.Size,
			})
			if blk.Caption != "" {
				text = joinText(text, blk.Caption)
			}
		case message.BlockFile:
			sub.Attachments = append(sub.Attachments, idea.Attachment{
				Type: idea.AttachmentDocument,
				URL:  blk.URL,
				Name: blk.FileName,
				Size: blk.Size,
			})
			switch {
			case blk.Caption != "":
				text = joinText(text, blk.Caption)
			case text == "" && blk.FileName != "":
				text = "Document: " + blk.FileName
			}
		}
	}
	sub.Text = text
	return sub, nil
}

func joinText(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "\n" + extra
}
