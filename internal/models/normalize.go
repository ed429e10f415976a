package models

import (
	"bytes"
	"encoding/json"
)

// Shape classifies a response body.
type Shape int

const (
	ShapeMalformed Shape = iota // anything that is neither a list nor an envelope
	ShapeSequence               // a bare JSON array
	ShapeEnvelope               // an object wrapping the list under "items"
)

func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeEnvelope:
		return "envelope"
	default:
		return "malformed"
	}
}

// RawResponse is a response body classified by [ParseRaw].
// Items is empty unless Shape is [ShapeSequence] or [ShapeEnvelope].
type RawResponse struct {
	Shape Shape
	Items []json.RawMessage
}

// ParseRaw classifies body as a sequence, an envelope or malformed input.
//
// An envelope whose "items" value is not an array counts as malformed.
func ParseRaw(body []byte) RawResponse {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return RawResponse{Shape: ShapeMalformed}
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return RawResponse{Shape: ShapeMalformed}
		}
		return RawResponse{Shape: ShapeSequence, Items: items}
	case '{':
		var env struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return RawResponse{Shape: ShapeMalformed}
		}
		trimmed := bytes.TrimSpace(env.Items)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return RawResponse{Shape: ShapeMalformed}
		}
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return RawResponse{Shape: ShapeMalformed}
		}
		return RawResponse{Shape: ShapeEnvelope, Items: items}
	default:
		return RawResponse{Shape: ShapeMalformed}
	}
}

// List returns the records carried by the response, never nil.
func (r RawResponse) List() []json.RawMessage {
	if r.Items == nil {
		return []json.RawMessage{}
	}
	return r.Items
}

// NormalizeList returns the list inside body: the array itself, the "items" of an
// envelope, or an empty list for anything else.
func NormalizeList(body []byte) []json.RawMessage {
	return ParseRaw(body).List()
}

// DecodeItems decodes each item into T, skipping null items and items that do not decode.
func DecodeItems[T any](items []json.RawMessage) []T {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DecodeTracks normalizes and decodes a top tracks response.
func DecodeTracks(body []byte) []TrackSummary {
	return DecodeItems[TrackSummary](NormalizeList(body))
}

// DecodeArtists normalizes and decodes a top artists response.
func DecodeArtists(body []byte) []ArtistSummary {
	return DecodeItems[ArtistSummary](NormalizeList(body))
}

// DecodeGenres normalizes and decodes a top genres response.
func DecodeGenres(body []byte) []GenreEntry {
	return DecodeItems[GenreEntry](NormalizeList(body))
}
