package notion

import "time"

// notionTextLimit is the maximum length of a single rich_text segment.
const notionTextLimit = 2000

// --- Notion API request/response types (unexported, serialization only) ---

type richText struct {
	Type      string    `json:"type,omitempty"`
	Text      *textSpan `json:"text,omitempty"`
	PlainText string    `json:"plain_text,omitempty"`
}

type textSpan struct {
	Content string `json:"content"`
	Link    *link  `json:"link,omitempty"`
}

type link struct {
	URL string `json:"url"`
}

type selectOption struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type dateValue struct {
	Start string `json:"start"`
}

// property is a page property value. Exactly one field is set per use.
type property struct {
	Title    []richText    `json:"title,omitempty"`
	RichText []richText    `json:"rich_text,omitempty"`
	Select   *selectOption `json:"select,omitempty"`
	Number   *float64      `json:"number,omitempty"`
	Date     *dateValue    `json:"date,omitempty"`
}

type page struct {
	ID             string              `json:"id"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Properties     map[string]property `json:"properties"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type createPageRequest struct {
	Parent     parent              `json:"parent"`
	Properties map[string]property `json:"properties"`
	Children   []block             `json:"children,omitempty"`
}

type updatePageRequest struct {
	Properties map[string]property `json:"properties"`
}

type block struct {
	Object           string     `json:"object,omitempty"`
	Type             string     `json:"type"`
	Heading2         *blockText `json:"heading_2,omitempty"`
	Paragraph        *blockText `json:"paragraph,omitempty"`
	BulletedListItem *blockText `json:"bulleted_list_item,omitempty"`
}

type blockText struct {
	RichText []richText `json:"rich_text"`
}

type appendChildrenRequest struct {
	Children []block `json:"children"`
}

type database struct {
	Properties map[string]dbProperty `json:"properties"`
}

type dbProperty struct {
	Select *dbSelect `json:"select,omitempty"`
}

type dbSelect struct {
	Options []selectOption `json:"options"`
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// --- Wire helpers ---

// toRichText splits text into segments under the per-segment limit.
func toRichText(text string) []richText {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var out []richText
	for len(runes) > 0 {
		n := min(len(runes), notionTextLimit)
		out = append(out, richText{Text: &textSpan{Content: string(runes[:n])}})
		runes = runes[n:]
	}
	return out
}

// plainText joins rich_text segments back into a string.
func plainText(rts []richText) string {
	var s string
	for _, rt := range rts {
		if rt.PlainText != "" {
			s += rt.PlainText
		} else if rt.Text != nil {
			s += rt.Text.Content
		}
	}
	return s
}

func heading(text string) block {
	return block{Type: "heading_2", Heading2: &blockText{RichText: toRichText(text)}}
}

func paragraph(text string) block {
	return block{Type: "paragraph", Paragraph: &blockText{RichText: toRichText(text)}}
}

func bullet(text string) block {
	return block{Type: "bulleted_list_item", BulletedListItem: &blockText{RichText: toRichText(text)}}
}
