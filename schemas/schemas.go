// Package schemas defines the record payloads this client reads and writes,
// keyed by their lexicon collection ids.
package schemas

import (
	"encoding/json"
	"time"

	anchor "github.com/dropanchor/anchor-go"
)

const (
	CollectionCheckin = "app.dropanchor.checkin"
	CollectionAddress = "community.lexicon.location.address"
	CollectionPost    = "app.bsky.feed.post"

	TypeGeo = "community.lexicon.location.geo"
)

// Record is a typed payload that knows its own "$type" / collection id.
type Record interface {
	Type() string
}

// Address is a reusable venue record. Immutable once referenced: mutating it
// invalidates the integrity of every check-in that points at it.
type Address struct {
	Name       string `json:"name,omitempty"`
	Street     string `json:"street,omitempty"`
	Locality   string `json:"locality,omitempty"`
	Region     string `json:"region,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

func (Address) Type() string { return CollectionAddress }

// Geo is a coordinate pair. Decimal strings, per the lexicon.
type Geo struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

func (Geo) Type() string { return TypeGeo }

// Checkin is a durable record of a single venue visit. Created once, never
// mutated; edits are out of scope for the append-only protocol.
type Checkin struct {
	Text          string           `json:"text"`
	CreatedAt     time.Time        `json:"createdAt"`
	AddressRef    anchor.StrongRef `json:"addressRef"`
	Coordinates   Geo              `json:"coordinates"`
	Category      string           `json:"category,omitempty"`
	CategoryGroup string           `json:"categoryGroup,omitempty"`
	CategoryIcon  string           `json:"categoryIcon,omitempty"`
}

func (Checkin) Type() string { return CollectionCheckin }

// Post is the optional social announcement written alongside a check-in.
type Post struct {
	Text      string         `json:"text"`
	Facets    []anchor.Facet `json:"facets,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Langs     []string       `json:"langs,omitempty"`
}

func (Post) Type() string { return CollectionPost }

// Unknown holds a payload whose "$type" is outside the known schema set.
type Unknown struct {
	TypeID string
	Raw    json.RawMessage
}

func (u Unknown) Type() string { return u.TypeID }

// Marshal encodes a record with its "$type" member injected first, the way
// repositories expect tagged payloads on the wire.
func Marshal(r Record) (json.RawMessage, error) {
	if u, ok := r.(Unknown); ok {
		return u.Raw, nil
	}

	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	inject := `"$type":"` + r.Type() + `"`
	if len(b) > 2 {
		inject += ","
	}

	out := append([]byte("{"), inject...)
	out = append(out, b[1:]...)
	return out, nil
}

// Decode resolves a raw payload against the known schema set by its "$type"
// tag. Unrecognized types come back as Unknown rather than an error.
func Decode(raw json.RawMessage) (Record, error) {
	var probe struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case CollectionAddress:
		var a Address
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return a, nil
	case CollectionCheckin:
		var c Checkin
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case CollectionPost:
		var p Post
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeGeo:
		var g Geo
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, err
		}
		return g, nil
	default:
		return Unknown{TypeID: probe.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}
