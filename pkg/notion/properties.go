package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// maxTextRunes is Notion's limit for the content of one rich-text object.
const maxTextRunes = 2000

// RowProperties maps a row onto page properties. The first header is the
// title property and the rest are rich text. Missing values are empty.
func RowProperties(header, row []string) notionapi.Properties {
	props := make(notionapi.Properties, len(header))
	for i, h := range header {
		var v string
		if i < len(row) {
			v = row[i]
		}
		if i == 0 {
			props[h] = notionapi.TitleProperty{
				Type:  notionapi.PropertyTypeTitle,
				Title: richText(v),
			}
			continue
		}
		props[h] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(v),
		}
	}
	return props
}

// richText splits s into chunks within the per-object length limit.
func richText(s string) []notionapi.RichText {
	if s == "" {
		return []notionapi.RichText{}
	}
	runes := []rune(s)
	var out []notionapi.RichText
	for len(runes) > 0 {
		n := min(len(runes), maxTextRunes)
		out = append(out, notionapi.RichText{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: string(runes[:n])},
		})
		runes = runes[n:]
	}
	return out
}

// PlainText returns the text of a title or rich-text property. Other
// property types yield "".
func PlainText(p notionapi.Property) string {
	var parts []notionapi.RichText
	switch v := p.(type) {
	case *notionapi.TitleProperty:
		parts = v.Title
	case notionapi.TitleProperty:
		parts = v.Title
	case *notionapi.RichTextProperty:
		parts = v.RichText
	case notionapi.RichTextProperty:
		parts = v.RichText
	default:
		return ""
	}
	var b strings.Builder
	for _, rt := range parts {
		if rt.Text != nil {
			b.WriteString(rt.Text.Content)
		} else {
			b.WriteString(rt.PlainText)
		}
	}
	return b.String()
}

// PageRow reads a page back into a header-keyed map.
func PageRow(page notionapi.Page, header []string) map[string]string {
	out := make(map[string]string, len(header))
	for _, h := range header {
		out[h] = PlainText(page.Properties[h])
	}
	return out
}
