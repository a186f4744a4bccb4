package registry

import "context"

// Store persists registry state. Lookups report absence with found == false
// rather than an error; errors are reserved for storage failures.
type Store interface {
	ArtistIDByOwner(ctx context.Context, owner Principal) (id ArtistID, found bool, err error)
	SongIDByHash(ctx context.Context, hash Hash32) (id SongID, found bool, err error)
	Artist(ctx context.Context, id ArtistID) (artist Artist, found bool, err error)
	Song(ctx context.Context, id SongID) (song Song, found bool, err error)

	// NextArtistID increments the artist counter and returns its new value.
	NextArtistID(ctx context.Context) (ArtistID, error)
	// NextSongID increments the song counter and returns its new value.
	NextSongID(ctx context.Context) (SongID, error)

	// PutArtist stores the artist and its owner index entry.
	PutArtist(ctx context.Context, artist Artist) error
	// PutSong stores the song and its file hash index entry.
	PutSong(ctx context.Context, song Song) error

	Counters(ctx context.Context) (Counters, error)

	// Atomic runs fn as a single transaction. If fn returns an error every
	// write made through tx is discarded.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}
