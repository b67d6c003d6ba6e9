package domain

import "strings"

// ContentKind tells movies and series apart
type ContentKind string

const (
	KindMovie  ContentKind = "movie"
	KindSeries ContentKind = "series"
)

// ContentDescriptor is the catalog metadata handed over when a download starts
type ContentDescriptor struct {
	ContentID    string  `json:"content_id"`
	Title        string  `json:"title"`
	ImageURL     string  `json:"image_url"`
	SeasonLabel  *string `json:"season_label,omitempty"`
	SizeLabel    string  `json:"size_label,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`     // explicit tag from the catalog, e.g. "movie" or "tv"
	FirstAirDate string  `json:"first_air_date,omitempty"` // only set for series
	ReleaseDate  string  `json:"release_date,omitempty"`   // only set for movies
}

// ClassifyContent decides whether a descriptor is a movie or a series.
// An explicit media type always wins; field heuristics are the fallback.
func ClassifyContent(desc ContentDescriptor) ContentKind {
	switch strings.ToLower(strings.TrimSpace(desc.MediaType)) {
	case "tv", "series", "show":
		return KindSeries
	case "movie", "film":
		return KindMovie
	}

	if desc.SeasonLabel != nil && *desc.SeasonLabel != "" {
		return KindSeries
	}
	if desc.FirstAirDate != "" && desc.ReleaseDate == "" {
		return KindSeries
	}
	return KindMovie
}

// Merge fills empty fields of d from fallback. ContentID is never overwritten.
func (d ContentDescriptor) Merge(fallback ContentDescriptor) ContentDescriptor {
	if d.Title == "" {
		d.Title = fallback.Title
	}
	if d.ImageURL == "" {
		d.ImageURL = fallback.ImageURL
	}
	if d.SeasonLabel == nil && fallback.SeasonLabel != nil {
		label := *fallback.SeasonLabel
		d.SeasonLabel = &label
	}
	if d.SizeLabel == "" {
		d.SizeLabel = fallback.SizeLabel
	}
	if d.MediaType == "" {
		d.MediaType = fallback.MediaType
	}
	if d.FirstAirDate == "" {
		d.FirstAirDate = fallback.FirstAirDate
	}
	if d.ReleaseDate == "" {
		d.ReleaseDate = fallback.ReleaseDate
	}
	return d
}
