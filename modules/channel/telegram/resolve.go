package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ideavault/ideavault/pkg/message"
)

const fileIDPrefix = "tg://file_id/"

// resolveMediaURLs replaces tg://file_id/ references in media blocks
// with real HTTP download URLs via the Telegram Bot API. Text blocks
// and blocks with non-Telegram URLs are left untouched.
func resolveMediaURLs(ctx context.Context, client *Client, msg *message.InboundMessage) error {
	for i := range msg.Blocks {
		block := &msg.Blocks[i]
		switch block.Type {
		case message.BlockImage, message.BlockAudio, message.BlockFile:
		default:
			continue
		}
		if !strings.HasPrefix(block.URL, fileIDPrefix) {
			continue
		}

		fileID := strings.TrimPrefix(block.URL, fileIDPrefix)
		file, err := client.GetFile(ctx, fileID)
		if err != nil {
			return fmt.Errorf("telegram: resolve file %s: %w", fileID, err)
		}

		block.URL = client.FileURL(file.FilePath)
		if block.Size == 0 {
			block.Size = file.FileSize
		}
		if block.MIMEType == "" && block.Type == message.BlockImage {
			block.MIMEType = guessImageMIME(file.FilePath)
		}
	}
	return nil
}

// guessImageMIME infers a MIME type from the file extension.
func guessImageMIME(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
