// Package richtext turns plain text into byte-accurate facet annotations
// and composes the final check-in post body.
//
// All ranges are UTF-8 byte offsets into the exact annotated string. Facets
// from different detectors may overlap; no reconciliation is attempted.
package richtext

import (
	"net/url"
	"regexp"
	"strings"

	anchor "github.com/dropanchor/anchor-go"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s]+`)
	mentionPattern = regexp.MustCompile(`@[a-zA-Z0-9][a-zA-Z0-9.-]*`)
	tagPattern     = regexp.MustCompile(`#[\p{L}][\p{L}\p{N}_]*`)
)

// trailingPunct is stripped from the end of URL matches so that a link at
// the end of a sentence does not swallow the period.
const trailingPunct = `.,;:!?'")]`

// DetectFacets runs the three detectors over text and concatenates their
// output in a fixed order (links, mentions, hashtags). Pure and
// deterministic; the order is for determinism only, not semantic merging.
func DetectFacets(text string) []anchor.Facet {
	if text == "" {
		return nil
	}

	var facets []anchor.Facet
	facets = append(facets, detectLinks(text)...)
	facets = append(facets, detectMentions(text)...)
	facets = append(facets, detectTags(text)...)
	return facets
}

func detectLinks(text string) []anchor.Facet {
	var facets []anchor.Facet
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if !atBoundary(text, start) {
			continue
		}

		match := strings.TrimRight(text[start:end], trailingPunct)
		if match == "" {
			continue
		}
		end = start + len(match)

		uri := match
		if strings.HasPrefix(strings.ToLower(match), "www.") {
			// Display-only scheme; the byte range still covers the raw match.
			uri = "https://" + match
		}

		parsed, err := url.Parse(uri)
		if err != nil || parsed.Host == "" || !strings.Contains(parsed.Host, ".") {
			continue
		}

		facets = append(facets, anchor.Facet{
			Index:    anchor.ByteSlice{ByteStart: int64(start), ByteEnd: int64(end)},
			Features: []anchor.FacetFeature{anchor.LinkFeature(uri)},
		})
	}
	return facets
}

func detectMentions(text string) []anchor.Facet {
	var facets []anchor.Facet
	for _, loc := range mentionPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if !atBoundary(text, start) {
			continue
		}

		handle := strings.TrimRight(text[start+1:end], ".-")
		end = start + 1 + len(handle)

		if !anchor.IsValidHandle(handle) {
			continue
		}

		facets = append(facets, anchor.Facet{
			Index:    anchor.ByteSlice{ByteStart: int64(start), ByteEnd: int64(end)},
			Features: []anchor.FacetFeature{anchor.MentionFeature(handle)},
		})
	}
	return facets
}

func detectTags(text string) []anchor.Facet {
	var facets []anchor.Facet
	for _, loc := range tagPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if !atBoundary(text, start) {
			continue
		}

		facets = append(facets, anchor.Facet{
			Index:    anchor.ByteSlice{ByteStart: int64(start), ByteEnd: int64(end)},
			Features: []anchor.FacetFeature{anchor.TagFeature(text[start+1 : end])},
		})
	}
	return facets
}

// atBoundary reports whether the byte before offset can precede the start
// of a match. Keeps "#b" inside "a#b" and "www." inside "awww." unmatched.
func atBoundary(text string, offset int) bool {
	if offset == 0 {
		return true
	}
	c := text[offset-1]
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		return false
	}
	return c != '@' && c != '#'
}
