// Package registry implements the artist and song registry: two append-only
// tables with sequential IDs, a principal index that makes artist
// registration one-per-principal, and a file hash index that makes every
// song's content hash globally unique.
//
// A Registry has no internal synchronization. The host is expected to apply
// write operations one at a time, each inside Store.Atomic.
package registry

import (
	"context"
	"fmt"
)

// Registry applies registry operations to a Store.
type Registry struct {
	store Store
}

// New returns a Registry operating on store.
func New(store Store) *Registry {
	return &Registry{store: store}
}

// RegisterArtist registers caller as an artist called name.
func (r *Registry) RegisterArtist(ctx context.Context, caller Principal, name ASCII) (ArtistID, error) {
	_, registered, err := r.store.ArtistIDByOwner(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("lookup artist by owner: %w", err)
	}
	if registered {
		return 0, ErrAlreadyRegistered
	}
	if name == "" {
		return 0, ErrInvalidName
	}

	id, err := r.store.NextArtistID(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocate artist id: %w", err)
	}
	if err := r.store.PutArtist(ctx, Artist{ID: id, Owner: caller, Name: name}); err != nil {
		return 0, fmt.Errorf("store artist %d: %w", id, err)
	}
	return id, nil
}

// RegisterSong registers a song owned by the caller's artist record.
// Titles are not deduplicated; only the file hash must be unique.
func (r *Registry) RegisterSong(ctx context.Context, caller Principal, title ASCII, fileHash Hash32) (SongID, error) {
	artistID, isArtist, err := r.store.ArtistIDByOwner(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("lookup artist by owner: %w", err)
	}
	if !isArtist {
		return 0, ErrNotArtist
	}
	if title == "" {
		return 0, ErrInvalidName
	}
	_, claimed, err := r.store.SongIDByHash(ctx, fileHash)
	if err != nil {
		return 0, fmt.Errorf("lookup song by hash: %w", err)
	}
	if claimed {
		return 0, ErrDuplicateFileHash
	}

	id, err := r.store.NextSongID(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocate song id: %w", err)
	}
	song := Song{ID: id, ArtistID: artistID, Title: title, FileHash: fileHash}
	if err := r.store.PutSong(ctx, song); err != nil {
		return 0, fmt.Errorf("store song %d: %w", id, err)
	}
	return id, nil
}

// GetArtist returns the artist with the given id.
func (r *Registry) GetArtist(ctx context.Context, id ArtistID) (Artist, error) {
	artist, found, err := r.store.Artist(ctx, id)
	if err != nil {
		return Artist{}, fmt.Errorf("load artist %d: %w", id, err)
	}
	if !found {
		return Artist{}, ErrNotFound
	}
	return artist, nil
}

// GetSong returns the song with the given id.
func (r *Registry) GetSong(ctx context.Context, id SongID) (Song, error) {
	song, found, err := r.store.Song(ctx, id)
	if err != nil {
		return Song{}, fmt.Errorf("load song %d: %w", id, err)
	}
	if !found {
		return Song{}, ErrNotFound
	}
	return song, nil
}

// ArtistByOwner returns the artist registered by owner.
func (r *Registry) ArtistByOwner(ctx context.Context, owner Principal) (Artist, error) {
	id, found, err := r.store.ArtistIDByOwner(ctx, owner)
	if err != nil {
		return Artist{}, fmt.Errorf("lookup artist by owner: %w", err)
	}
	if !found {
		return Artist{}, ErrNotFound
	}
	return r.GetArtist(ctx, id)
}

// SongByHash returns the song that claimed fileHash.
func (r *Registry) SongByHash(ctx context.Context, fileHash Hash32) (Song, error) {
	id, found, err := r.store.SongIDByHash(ctx, fileHash)
	if err != nil {
		return Song{}, fmt.Errorf("lookup song by hash: %w", err)
	}
	if !found {
		return Song{}, ErrNotFound
	}
	return r.GetSong(ctx, id)
}

// Stats returns the current artist and song counters.
func (r *Registry) Stats(ctx context.Context) (Counters, error) {
	c, err := r.store.Counters(ctx)
	if err != nil {
		return Counters{}, fmt.Errorf("load counters: %w", err)
	}
	return c, nil
}
