package anchor

import (
	"encoding/json"
	"fmt"
)

// StrongRef identifies an immutable version of a record: its location plus
// the content hash of its canonical encoding. Two refs with the same URI but
// different CIDs denote different content.
type StrongRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

func (r StrongRef) IsZero() bool {
	return r.URI == "" && r.CID == ""
}

// RecordEnvelope is a fetched record together with its strong reference.
// Value is left raw so callers can decode against a known schema set.
type RecordEnvelope struct {
	URI   string          `json:"uri"`
	CID   string          `json:"cid"`
	Value json.RawMessage `json:"value"`
}

func (e RecordEnvelope) Ref() StrongRef {
	return StrongRef{URI: e.URI, CID: e.CID}
}

// ByteSlice is a half-open byte range into the UTF-8 encoding of the
// annotated text. Offsets are bytes, never code units or codepoints.
type ByteSlice struct {
	ByteStart int64 `json:"byteStart"`
	ByteEnd   int64 `json:"byteEnd"`
}

// Facet annotates a byte range of a post's text with one or more features.
type Facet struct {
	Index    ByteSlice      `json:"index"`
	Features []FacetFeature `json:"features"`
}

const (
	FeatureLinkType    = "app.bsky.richtext.facet#link"
	FeatureMentionType = "app.bsky.richtext.facet#mention"
	FeatureTagType     = "app.bsky.richtext.facet#tag"
)

type FacetLink struct {
	URI string `json:"uri"`
}

type FacetMention struct {
	Handle string `json:"handle"`
}

type FacetTag struct {
	Tag string `json:"tag"`
}

// FacetFeature is a "$type"-discriminated union over the known feature
// schemas. Exactly one of the typed members is set; unrecognized types are
// preserved as an opaque blob in Raw.
type FacetFeature struct {
	Link    *FacetLink
	Mention *FacetMention
	Tag     *FacetTag
	Raw     json.RawMessage
}

func LinkFeature(uri string) FacetFeature {
	return FacetFeature{Link: &FacetLink{URI: uri}}
}

func MentionFeature(handle string) FacetFeature {
	return FacetFeature{Mention: &FacetMention{Handle: handle}}
}

func TagFeature(tag string) FacetFeature {
	return FacetFeature{Tag: &FacetTag{Tag: tag}}
}

func (f FacetFeature) MarshalJSON() ([]byte, error) {
	switch {
	case f.Link != nil:
		return injectType(FeatureLinkType, f.Link)
	case f.Mention != nil:
		return injectType(FeatureMentionType, f.Mention)
	case f.Tag != nil:
		return injectType(FeatureTagType, f.Tag)
	case f.Raw != nil:
		return f.Raw, nil
	}
	return nil, fmt.Errorf("empty facet feature")
}

func (f *FacetFeature) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case FeatureLinkType:
		f.Link = &FacetLink{}
		return json.Unmarshal(data, f.Link)
	case FeatureMentionType:
		f.Mention = &FacetMention{}
		return json.Unmarshal(data, f.Mention)
	case FeatureTagType:
		f.Tag = &FacetTag{}
		return json.Unmarshal(data, f.Tag)
	default:
		f.Raw = append(json.RawMessage(nil), data...)
		return nil
	}
}

// injectType prepends a "$type" member to the encoding of v.
func injectType(typ string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	inject := "\"$type\":\"" + typ + "\""
	if len(b) > 2 {
		inject += ","
	}

	n := append([]byte("{"), []byte(inject)...)
	n = append(n, b[1:]...)

	return n, nil
}
