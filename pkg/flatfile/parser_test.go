package flatfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContent(t *testing.T) {
	c := ParseContent([]byte(" Title: Hello \n----\n\nDesc: World"))
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "Hello", c.Value("title"))
	assert.Equal(t, "World", c.Value("desc"))
}

func TestParseContent_MultiLine(t *testing.T) {
	body := "Title: About\n\n----\n\nText: First line\n\nSecond line with a link https://example.com\n\n----\n\nUuid: page://abc\n"
	c := ParseContent([]byte(body))
	require.Equal(t, 3, c.Len())
	assert.Equal(t, "About", c.Value("title"))
	assert.Equal(t, "First line\n\nSecond line with a link https://example.com", c.Value("text"))
	assert.Equal(t, "page://abc", c.Value("uuid"))
}

func TestParseContent_Tolerant(t *testing.T) {
	body := "garbage line\nno key here\n----\nBad Key: skipped\nGood-Key_1: kept\r\n----\n: empty key\n"
	c := ParseContent([]byte(body))
	assert.Equal(t, []string{"good-key_1"}, c.Names())
	assert.Equal(t, "kept", c.Value("good-key_1"))
}

func TestParseContent_Empty(t *testing.T) {
	assert.Equal(t, 0, ParseContent(nil).Len())
	assert.Equal(t, 0, ParseContent([]byte("----\n----\n")).Len())
}

func TestParseContent_LastWins(t *testing.T) {
	c := ParseContent([]byte("Title: One\n----\nTITLE: Two"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "Two", c.Value("title"))
}

func TestParseContent_Structure(t *testing.T) {
	body := "Links:\n\n- \n  title: One\n  url: /one\n- \n  title: Two\n  url: /two\n"
	c := ParseContent([]byte(body))
	items, err := c.Get("links").Structure()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "/two", items[1]["url"])
}

func TestSections(t *testing.T) {
	sections := Sections("\ufeffa: 1\r\n----\r\nb: 2\n  ----  \nc: 3")
	require.Len(t, sections, 3)
	assert.Equal(t, []string{"a: 1"}, sections[0])
	assert.Equal(t, []string{"c: 3"}, sections[2])
}
