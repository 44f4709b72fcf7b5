package domain

// Place is the venue a check-in happens at, as supplied by the caller
// (place discovery itself is an external collaborator).
type Place struct {
	Name       string
	Street     string
	Locality   string
	Region     string
	Country    string
	PostalCode string

	Latitude  string
	Longitude string

	Category      string
	CategoryGroup string
	CategoryIcon  string

	// URL is the venue's canonical page, used as the link target for the
	// styled venue name in the social post.
	URL string
}
