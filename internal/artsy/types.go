package artsy

// Link is a single hypermedia href.
type Link struct {
	Href string `json:"href"`
}

// ResultLinks carries the link set the frontend consumes from search results.
type ResultLinks struct {
	Self      Link `json:"self"`
	Permalink Link `json:"permalink"`
	Thumbnail Link `json:"thumbnail"`
}

// SearchResult is one entry of the upstream free-text search response.
type SearchResult struct {
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	OGType      string      `json:"og_type"`
	Links       ResultLinks `json:"_links"`
}

// ArtistLinks carries the artist link set.
type ArtistLinks struct {
	Self      Link `json:"self"`
	Thumbnail Link `json:"thumbnail"`
	Permalink Link `json:"permalink"`
}

// Artist is the upstream artist resource.
type Artist struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Birthday    string      `json:"birthday"`
	Deathday    string      `json:"deathday"`
	Nationality string      `json:"nationality"`
	Biography   string      `json:"biography"`
	Links       ArtistLinks `json:"_links"`
}

// Artwork is the upstream artwork resource.
type Artwork struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Medium string `json:"medium"`
	Links  struct {
		Thumbnail Link `json:"thumbnail"`
	} `json:"_links"`
}

// Gene is an upstream category resource.
type Gene struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Links       struct {
		Thumbnail Link `json:"thumbnail"`
	} `json:"_links"`
}

// ArtistsEnvelope is the similar-artists response, passed through whole so
// the caller sees the upstream {_embedded:{artists:[...]}} shape.
type ArtistsEnvelope struct {
	Embedded struct {
		Artists []Artist `json:"artists"`
	} `json:"_embedded"`
}

type searchEnvelope struct {
	Embedded struct {
		Results []SearchResult `json:"results"`
	} `json:"_embedded"`
}

type artworksEnvelope struct {
	Embedded struct {
		Artworks []Artwork `json:"artworks"`
	} `json:"_embedded"`
}

type genesEnvelope struct {
	Embedded struct {
		Genes []Gene `json:"genes"`
	} `json:"_embedded"`
}
