package message

// ContentBlock is a flat union representing one piece of content inside
// a message. The Type field discriminates which fields are meaningful.
type ContentBlock struct {
	Type     BlockType `json:"type"`
	Text     string    `json:"text,omitempty"`
	URL      string    `json:"url,omitempty"`
	MIMEType string    `json:"mime_type,omitempty"`
	FileName string    `json:"file_name,omitempty"`
	Caption  string    `json:"caption,omitempty"`
	IsVoice  bool      `json:"is_voice,omitempty"`
	Size     int64     `json:"size,omitempty"`
	Duration int       `json:"duration,omitempty"` // seconds, audio only
}

// NewTextBlock creates a text content block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// NewImageBlock creates an image content block.
func NewImageBlock(url, mimeType string) ContentBlock {
	return ContentBlock{Type: BlockImage, URL: url, MIMEType: mimeType}
}

// NewAudioBlock creates an audio content block. Set isVoice to true for
// voice messages.
func NewAudioBlock(url, mimeType string, isVoice bool) ContentBlock {
	return ContentBlock{Type: BlockAudio, URL: url, MIMEType: mimeType, IsVoice: isVoice}
}

// NewFileBlock creates a file content block.
func NewFileBlock(url, mimeType, fileName string) ContentBlock {
	return ContentBlock{Type: BlockFile, URL: url, MIMEType: mimeType, FileName: fileName}
}

// textContent concatenates the text of all text blocks, separated by newlines.
func textContent(blocks []ContentBlock) string {
	var result string
	for _, b := range blocks {
		if b.Type == BlockText && b.Text != "" {
			if result != "" {
				result += "\n"
			}
			result += b.Text
		}
	}
	return result
}

// hasMedia reports whether any block carries a non-text content type.
func hasMedia(blocks []ContentBlock) bool {
	for _, b := range blocks {
		switch b.Type {
		case BlockImage, BlockAudio, BlockFile:
			return true
		}
	}
	return false
}
