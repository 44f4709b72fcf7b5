package richtext

import (
	"strings"

	anchor "github.com/dropanchor/anchor-go"
)

const (
	// tagSuffix is the fixed tail of every composed post. The two tag
	// facets are derived from it by byte arithmetic, not re-detection.
	tagSuffix  = " #checkin #dropanchor"
	checkinTag = "#checkin"
	anchorTag  = "#dropanchor"

	// DefaultMessage is used when the caller supplies no message.
	DefaultMessage = "Dropped anchor ⚓️"
)

// Composer builds the final post body for a check-in: the user's message,
// a styled "at <venue>" tagline linking to the venue, and the fixed tags.
type Composer struct {
	defaultMessage string
}

func NewComposer(defaultMessage string) *Composer {
	if strings.TrimSpace(defaultMessage) == "" {
		defaultMessage = DefaultMessage
	}
	return &Composer{defaultMessage: defaultMessage}
}

// Compose returns the post text and its facets. The message leads the final
// string, so facets detected on it carry over without offset adjustment;
// the venue link and tag facets are computed from the composed layout.
func (c *Composer) Compose(venueName, icon, venueURL, message string) (string, []anchor.Facet) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = c.defaultMessage
	}

	prefix := Italic("at ")
	styledName := BoldItalic(venueName)

	var b strings.Builder
	b.WriteString(msg)
	b.WriteString("\n\n")
	b.WriteString(prefix)
	nameStart := b.Len()
	b.WriteString(styledName)
	nameEnd := b.Len()
	if icon != "" {
		b.WriteString(" ")
		b.WriteString(icon)
	}
	b.WriteString(tagSuffix)
	text := b.String()

	facets := DetectFacets(msg)

	if venueURL != "" && nameEnd > nameStart {
		facets = append(facets, anchor.Facet{
			Index:    anchor.ByteSlice{ByteStart: int64(nameStart), ByteEnd: int64(nameEnd)},
			Features: []anchor.FacetFeature{anchor.LinkFeature(venueURL)},
		})
	}

	checkinStart := len(text) - len(tagSuffix) + 1
	checkinEnd := checkinStart + len(checkinTag)
	anchorStart := checkinEnd + 1
	anchorEnd := len(text)

	facets = append(facets,
		anchor.Facet{
			Index:    anchor.ByteSlice{ByteStart: int64(checkinStart), ByteEnd: int64(checkinEnd)},
			Features: []anchor.FacetFeature{anchor.TagFeature(strings.TrimPrefix(checkinTag, "#"))},
		},
		anchor.Facet{
			Index:    anchor.ByteSlice{ByteStart: int64(anchorStart), ByteEnd: int64(anchorEnd)},
			Features: []anchor.FacetFeature{anchor.TagFeature(strings.TrimPrefix(anchorTag, "#"))},
		},
	)

	return text, facets
}
