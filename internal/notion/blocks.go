package notion

import (
	"encoding/json"
	"strings"
	"time"
)

// Block types the extraction stage understands. Anything else is skipped.
const (
	BlockParagraph        = "paragraph"
	BlockHeading1         = "heading_1"
	BlockHeading2         = "heading_2"
	BlockHeading3         = "heading_3"
	BlockBulletedListItem = "bulleted_list_item"
	BlockNumberedListItem = "numbered_list_item"
	BlockCode             = "code"
)

// RichText is a single rich-text fragment.
type RichText struct {
	PlainText string `json:"plain_text"`
}

// BlockContent is the payload shared by every text-bearing block type.
type BlockContent struct {
	RichText []RichText `json:"rich_text"`
}

// Block is one content block of a page.
type Block struct {
	ID               string        `json:"id"`
	Type             string        `json:"type"`
	Paragraph        *BlockContent `json:"paragraph,omitempty"`
	Heading1         *BlockContent `json:"heading_1,omitempty"`
	Heading2         *BlockContent `json:"heading_2,omitempty"`
	Heading3         *BlockContent `json:"heading_3,omitempty"`
	BulletedListItem *BlockContent `json:"bulleted_list_item,omitempty"`
	NumberedListItem *BlockContent `json:"numbered_list_item,omitempty"`
	Code             *BlockContent `json:"code,omitempty"`
}

// PlainText returns the joined plain text of the block's payload for its
// declared type, or "" when the block carries no text.
func (b *Block) PlainText() string {
	var content *BlockContent
	switch b.Type {
	case BlockParagraph:
		content = b.Paragraph
	case BlockHeading1:
		content = b.Heading1
	case BlockHeading2:
		content = b.Heading2
	case BlockHeading3:
		content = b.Heading3
	case BlockBulletedListItem:
		content = b.BulletedListItem
	case BlockNumberedListItem:
		content = b.NumberedListItem
	case BlockCode:
		content = b.Code
	}
	if content == nil {
		return ""
	}

	parts := make([]string, 0, len(content.RichText))
	for _, rt := range content.RichText {
		parts = append(parts, rt.PlainText)
	}
	return strings.Join(parts, " ")
}

// Page is one page row of a database query result.
type Page struct {
	ID             string              `json:"id"`
	URL            string              `json:"url"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Properties     map[string]Property `json:"properties"`
}

// Property is a single page property. Raw preserves the full payload so the
// pipeline can store properties without interpreting them.
type Property struct {
	Type  string
	Title []RichText
	Raw   map[string]any
}

// UnmarshalJSON keeps both the typed title view and the raw payload.
func (p *Property) UnmarshalJSON(data []byte) error {
	var typed struct {
		Type  string     `json:"type"`
		Title []RichText `json:"title"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	p.Type = typed.Type
	p.Title = typed.Title

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Raw = raw
	return nil
}

// TitleText returns the property's joined title text when it is a title
// property, or "" otherwise.
func (p Property) TitleText() string {
	if p.Type != "title" || len(p.Title) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.Title))
	for _, rt := range p.Title {
		parts = append(parts, rt.PlainText)
	}
	return strings.Join(parts, " ")
}
