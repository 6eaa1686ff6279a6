package inat

import "strings"

// Taxon is a taxonomic record as returned by the taxa endpoints.
type Taxon struct {
	ID                  int64  `json:"id"`
	Rank                string `json:"rank"`
	Name                string `json:"name"`
	PreferredCommonName string `json:"preferred_common_name"`
	ObservationsCount   int    `json:"observations_count"`
	DefaultPhoto        *Photo `json:"default_photo"`
}

// Photo holds the image references attached to taxa and observations.
// Taxon default photos carry explicit size variants; observation photos
// usually carry only the square thumbnail URL.
type Photo struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	MediumURL   string `json:"medium_url"`
	SquareURL   string `json:"square_url"`
	Attribution string `json:"attribution"`
}

// DisplayURL returns the best available mid-size image URL, deriving it from
// the square thumbnail when no explicit medium variant is present.
func (p Photo) DisplayURL() string {
	if p.MediumURL != "" {
		return p.MediumURL
	}
	if strings.Contains(p.URL, "square.") {
		return strings.Replace(p.URL, "square.", "medium.", 1)
	}
	return p.URL
}

// SpeciesCount is one row of a user's species-counts listing: a taxon plus
// the number of observations that user has of it.
type SpeciesCount struct {
	Count int    `json:"count"`
	Taxon *Taxon `json:"taxon"`
}

// User is a platform account as returned by the users endpoints.
type User struct {
	ID                int64  `json:"id"`
	Login             string `json:"login"`
	Name              string `json:"name"`
	ObservationsCount int    `json:"observations_count"`
}

// Observation is a single observation record. ObservedOn is the date-only
// field; TimeObservedAt, when present, is the precise timestamp including
// the observer's UTC offset.
type Observation struct {
	ID             int64   `json:"id"`
	ObservedOn     string  `json:"observed_on"`
	TimeObservedAt string  `json:"time_observed_at"`
	User           *User   `json:"user"`
	Photos         []Photo `json:"photos"`
	URI            string  `json:"uri"`
}

// ObservationPage is one page of observation search results.
type ObservationPage struct {
	TotalResults int           `json:"total_results"`
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
	Results      []Observation `json:"results"`
}

type speciesCountsResponse struct {
	TotalResults int            `json:"total_results"`
	Page         int            `json:"page"`
	PerPage      int            `json:"per_page"`
	Results      []SpeciesCount `json:"results"`
}

type taxaResponse struct {
	TotalResults int     `json:"total_results"`
	Results      []Taxon `json:"results"`
}

type usersResponse struct {
	TotalResults int    `json:"total_results"`
	Results      []User `json:"results"`
}
