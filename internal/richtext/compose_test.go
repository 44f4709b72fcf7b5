package richtext

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	anchor "github.com/dropanchor/anchor-go"
)

func TestComposeDefaultMessage(t *testing.T) {
	c := NewComposer("")

	text, facets := c.Compose("Café X", "☕", "https://x.test/1", "")

	assert.True(t, strings.HasPrefix(text, DefaultMessage+"\n\n"))
	assert.True(t, strings.HasSuffix(text, " #checkin #dropanchor"))

	require.Len(t, facets, 3)

	tags := facets[len(facets)-2:]
	assert.Equal(t, "#checkin", sliceRange(t, text, tags[0]))
	assert.Equal(t, "#dropanchor", sliceRange(t, text, tags[1]))
	require.NotNil(t, tags[0].Features[0].Tag)
	require.NotNil(t, tags[1].Features[0].Tag)
	assert.Equal(t, "checkin", tags[0].Features[0].Tag.Tag)
	assert.Equal(t, "dropanchor", tags[1].Features[0].Tag.Tag)
}

func TestComposeVenueLinkSpan(t *testing.T) {
	c := NewComposer("")

	text, facets := c.Compose("Café X", "☕", "https://x.test/1", "lovely spot")

	var link *anchor.Facet
	for i := range facets {
		if facets[i].Features[0].Link != nil {
			link = &facets[i]
		}
	}
	require.NotNil(t, link)

	span := sliceRange(t, text, *link)
	assert.Equal(t, BoldItalic("Café X"), span)
	assert.Equal(t, "https://x.test/1", link.Features[0].Link.URI)
}

func TestComposeMessageFacetsLead(t *testing.T) {
	c := NewComposer("")

	message := "see https://example.com #fun"
	text, facets := c.Compose("Pier 7", "⚓", "https://x.test/2", message)

	// Message facets come first and their offsets hold in the final string.
	require.NotNil(t, facets[0].Features[0].Link)
	assert.Equal(t, "https://example.com", sliceRange(t, text, facets[0]))
	require.NotNil(t, facets[1].Features[0].Tag)
	assert.Equal(t, "#fun", sliceRange(t, text, facets[1]))
}

func TestComposeCustomDefault(t *testing.T) {
	c := NewComposer("Ahoy!")
	text, _ := c.Compose("Dock", "", "", "   ")
	assert.True(t, strings.HasPrefix(text, "Ahoy!\n\n"))
}

func TestStyledGlyphsAreWiderThanASCII(t *testing.T) {
	styled := BoldItalic("Cafe 9")
	assert.Greater(t, len(styled), len("Cafe 9"))
	assert.Equal(t, utf8.RuneCountInString("Cafe 9"), utf8.RuneCountInString(styled))

	// Unmapped runes pass through.
	assert.Equal(t, "é☕", Italic("é☕"))
	assert.Contains(t, Italic("hat"), string(rune(0x210E)))
}

func TestComposeTextShape(t *testing.T) {
	c := NewComposer("")
	text, _ := c.Compose("Pier 7", "⚓", "https://x.test/2", "hello")

	want := "hello\n\n" + Italic("at ") + BoldItalic("Pier 7") + " ⚓ #checkin #dropanchor"
	assert.Equal(t, want, text)
}
