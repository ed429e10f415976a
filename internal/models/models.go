// package models defines the data model for the listening summary client
package models

import (
	"context"
	"time"
)

// Session is the credential pair identifying the logged-in user to the backend.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Empty reports whether no access token is held.
func (s Session) Empty() bool {
	return s.AccessToken == ""
}

// TokenStore persists a [Session] across process restarts.
// Implementations store both tokens together and clear them together.
type TokenStore interface {
	Load(ctx context.Context) (Session, error) // Load returns the zero Session when nothing is stored
	Save(ctx context.Context, s Session) error // Save replaces both stored tokens
	Clear(ctx context.Context) error           // Clear removes both stored tokens
}

// Snapshot is a saved copy of the normalized dashboard collections.
type Snapshot struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Tracks    []TrackSummary  `json:"tracks"`
	Artists   []ArtistSummary `json:"artists"`
	Genres    []GenreEntry    `json:"genres"`
	Wrapped   *WrappedSummary `json:"wrapped,omitempty"`
}

// SnapshotStore persists dashboard snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Latest(ctx context.Context) (*Snapshot, error)
}
