package notion

import (
	"strings"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowProperties(t *testing.T) {
	props := RowProperties([]string{"Дата", "Проблема", "Страх"}, []string{"2026-10-18", "доставка"})

	require.Len(t, props, 3)
	title, ok := props["Дата"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, notionapi.PropertyTypeTitle, title.Type)
	assert.Equal(t, "2026-10-18", PlainText(title))

	rt, ok := props["Проблема"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "доставка", PlainText(rt))

	assert.Equal(t, "", PlainText(props["Страх"]))
}

func TestRichText_SplitsLongValues(t *testing.T) {
	long := strings.Repeat("я", maxTextRunes+10)
	parts := richText(long)

	require.Len(t, parts, 2)
	assert.Len(t, []rune(parts[0].Text.Content), maxTextRunes)
	assert.Len(t, []rune(parts[1].Text.Content), 10)
	assert.Equal(t, long, PlainText(notionapi.RichTextProperty{RichText: parts}))
}

func TestPlainText_Pointers(t *testing.T) {
	p := &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "a"}, {PlainText: "b"}}}
	assert.Equal(t, "ab", PlainText(p))
	assert.Equal(t, "", PlainText(&notionapi.NumberProperty{Number: 3}))
	assert.Equal(t, "", PlainText(nil))
}

func TestPageRow(t *testing.T) {
	page := notionapi.Page{Properties: notionapi.Properties{
		"Дата":     &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "2026-10-18"}}},
		"Проблема": &notionapi.RichTextProperty{RichText: []notionapi.RichText{{PlainText: "цена"}}},
	}}

	row := PageRow(page, []string{"Дата", "Проблема", "Нет"})
	assert.Equal(t, map[string]string{"Дата": "2026-10-18", "Проблема": "цена", "Нет": ""}, row)
}

func TestWithRateLimit(t *testing.T) {
	c := NewClient("tok").(*rowClient)
	require.NotNil(t, c.limiter)
	assert.InDelta(t, DefaultRequestsPerSecond, float64(c.limiter.Limit()), 0.001)

	c = NewClient("tok", WithRateLimit(0)).(*rowClient)
	assert.Nil(t, c.limiter)

	c = NewClient("tok", WithRateLimit(10)).(*rowClient)
	require.NotNil(t, c.limiter)
	assert.InDelta(t, 10, float64(c.limiter.Limit()), 0.001)
}
