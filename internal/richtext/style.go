package richtext

import "strings"

// Venue names are styled with the Unicode mathematical alphanumeric blocks
// so the plain-text post carries emphasis without markup. Only Latin letters
// and digits have styled glyphs; everything else passes through. The mapped
// glyphs are longer in UTF-8 than their ASCII sources, so byte ranges must
// always be computed on the transformed string.

// Italic maps s onto the mathematical italic alphabet.
func Italic(s string) string {
	return mapRunes(s, italicRune)
}

// BoldItalic maps s onto the mathematical bold italic alphabet.
func BoldItalic(s string) string {
	return mapRunes(s, boldItalicRune)
}

func mapRunes(s string, f func(rune) rune) string {
	var b strings.Builder
	b.Grow(len(s) * 4)
	for _, r := range s {
		b.WriteRune(f(r))
	}
	return b.String()
}

func italicRune(r rune) rune {
	switch {
	case r == 'h':
		// The math-italic slot for 'h' is reserved; Unicode uses the
		// Planck-constant codepoint instead.
		return 0x210E
	case r >= 'A' && r <= 'Z':
		return 0x1D434 + (r - 'A')
	case r >= 'a' && r <= 'z':
		return 0x1D44E + (r - 'a')
	}
	return r
}

func boldItalicRune(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return 0x1D468 + (r - 'A')
	case r >= 'a' && r <= 'z':
		return 0x1D482 + (r - 'a')
	case r >= '0' && r <= '9':
		// No italic digit block exists; bold digits are the closest match.
		return 0x1D7CE + (r - '0')
	}
	return r
}
