// package services implements the authenticated fetch client for the summary backend
package services

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/wrapped/internal/shared"
)

// Endpoint identifies one of the backend's summary endpoints.
type Endpoint int

const (
	EndpointTopTracks Endpoint = iota
	EndpointTopArtists
	EndpointTopGenres
	EndpointWrapped
)

// Endpoints lists the summary endpoints in load order.
var Endpoints = []Endpoint{EndpointTopTracks, EndpointTopArtists, EndpointTopGenres, EndpointWrapped}

const (
	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
)

// Path returns the URL path of the endpoint.
func (e Endpoint) Path() string {
	switch e {
	case EndpointTopTracks:
		return "/spotify/top-tracks"
	case EndpointTopArtists:
		return "/spotify/top-artists"
	case EndpointTopGenres:
		return "/spotify/top-genres"
	case EndpointWrapped:
		return "/spotify/wrapped"
	default:
		return ""
	}
}

func (e Endpoint) String() string {
	switch e {
	case EndpointTopTracks:
		return "top-tracks"
	case EndpointTopArtists:
		return "top-artists"
	case EndpointTopGenres:
		return "top-genres"
	case EndpointWrapped:
		return "wrapped"
	default:
		return fmt.Sprintf("endpoint(%d)", int(e))
	}
}

// RequestError is returned for a non-2xx response.
//
// It unwraps to [shared.ErrUnauthorized] for 401 and [shared.ErrRequestFailed] otherwise.
type RequestError struct {
	Path       string
	StatusCode int
	Body       []byte
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("GET %s: status %d %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *RequestError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return shared.ErrUnauthorized
	}
	return shared.ErrRequestFailed
}
