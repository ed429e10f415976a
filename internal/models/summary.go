package models

import (
	"bytes"
	"encoding/json"
)

// Image is an artwork reference.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// ArtistRef names a track's artist. The backend sends either a bare string or {"name": ...}.
type ArtistRef struct {
	Name string
}

func (a *ArtistRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		a.Name = name
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Name = obj.Name
	return nil
}

func (a ArtistRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Name)
}

// TrackSummary is one entry of the top tracks list.
type TrackSummary struct {
	Name       string      `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	Popularity int         `json:"popularity,omitempty"`
}

// ArtistNames returns the non-empty artist names in order.
func (t TrackSummary) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// ArtistSummary is one entry of the top artists list.
type ArtistSummary struct {
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Images     []Image  `json:"images,omitempty"`
	Popularity int      `json:"popularity,omitempty"`
}

// GenreEntry is either a bare genre name or a {"genre", "count"} record.
//
// Counted is set only when the record carried an explicit count; bare names and records
// without a count are weighted by occurrence.
type GenreEntry struct {
	Genre   string
	Count   int
	Counted bool
}

func (g *GenreEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*g = GenreEntry{Genre: name}
		return nil
	}

	var rec struct {
		Genre string `json:"genre"`
		Name  string `json:"name"`
		Count *int   `json:"count"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	*g = GenreEntry{Genre: rec.Genre}
	if g.Genre == "" {
		g.Genre = rec.Name
	}
	if rec.Count != nil {
		g.Count = *rec.Count
		g.Counted = true
	}
	return nil
}

func (g GenreEntry) MarshalJSON() ([]byte, error) {
	if !g.Counted {
		return json.Marshal(g.Genre)
	}
	return json.Marshal(struct {
		Genre string `json:"genre"`
		Count int    `json:"count"`
	}{g.Genre, g.Count})
}

// WrappedSummary holds the aggregate statistics shown as summary cards.
//
// TotalListeningTime is in minutes; nil means the backend did not report it.
type WrappedSummary struct {
	TotalListeningTime *float64 `json:"total_listening_time,omitempty"`
	TopGenre           string   `json:"top_genre,omitempty"`
	TopArtist          string   `json:"top_artist,omitempty"`
	TopTrack           string   `json:"top_track,omitempty"`
}

// DecodeWrapped decodes a wrapped summary field by field.
//
// Fields with an unexpected type are left empty, and a body that is not an object yields the zero summary.
func DecodeWrapped(body []byte) WrappedSummary {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &fields); err != nil {
		return WrappedSummary{}
	}

	var w WrappedSummary
	if raw, ok := fields["total_listening_time"]; ok {
		var minutes float64
		if err := json.Unmarshal(raw, &minutes); err == nil {
			w.TotalListeningTime = &minutes
		}
	}
	w.TopGenre = stringField(fields, "top_genre")
	w.TopArtist = stringField(fields, "top_artist")
	w.TopTrack = stringField(fields, "top_track")
	return w
}

// stringField reads a string, or the "name" of an object, from fields[key].
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var ref ArtistRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return ""
	}
	return ref.Name
}
