package registry

import (
	"context"
	"fmt"
	"sync"
)

type memState struct {
	lastArtist    ArtistID
	lastSong      SongID
	artists       map[ArtistID]Artist
	artistByOwner map[Principal]ArtistID
	songs         map[SongID]Song
	songByHash    map[Hash32]SongID
}

// MemStore is an in-memory Store. It is safe for concurrent use; Atomic
// holds the write lock for the duration of the transaction.
type MemStore struct {
	mu    sync.RWMutex
	state *memState
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{state: &memState{
		artists:       map[ArtistID]Artist{},
		artistByOwner: map[Principal]ArtistID{},
		songs:         map[SongID]Song{},
		songByHash:    map[Hash32]SongID{},
	}}
}

func (s *MemStore) read() *memTx {
	return &memTx{state: s.state}
}

func (s *MemStore) ArtistIDByOwner(ctx context.Context, owner Principal) (ArtistID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ArtistIDByOwner(ctx, owner)
}

func (s *MemStore) SongIDByHash(ctx context.Context, hash Hash32) (SongID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().SongIDByHash(ctx, hash)
}

func (s *MemStore) Artist(ctx context.Context, id ArtistID) (Artist, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Artist(ctx, id)
}

func (s *MemStore) Song(ctx context.Context, id SongID) (Song, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Song(ctx, id)
}

func (s *MemStore) Counters(ctx context.Context) (Counters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Counters(ctx)
}

func (s *MemStore) NextArtistID(ctx context.Context) (ArtistID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().NextArtistID(ctx)
}

func (s *MemStore) NextSongID(ctx context.Context) (SongID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().NextSongID(ctx)
}

func (s *MemStore) PutArtist(ctx context.Context, artist Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().PutArtist(ctx, artist)
}

func (s *MemStore) PutSong(ctx context.Context, song Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().PutSong(ctx, song)
}

// Atomic runs fn under the write lock and undoes its writes if it fails.
func (s *MemStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{state: s.state}
	if err := fn(tx); err != nil {
		tx.rollback(0)
		return err
	}
	return nil
}

// memTx operates on memState without locking and records an undo entry
// for every write.
type memTx struct {
	state *memState
	undo  []func()
}

func (tx *memTx) rollback(mark int) {
	for i := len(tx.undo) - 1; i >= mark; i-- {
		tx.undo[i]()
	}
	tx.undo = tx.undo[:mark]
}

func (tx *memTx) ArtistIDByOwner(_ context.Context, owner Principal) (ArtistID, bool, error) {
	id, ok := tx.state.artistByOwner[owner]
	return id, ok, nil
}

func (tx *memTx) SongIDByHash(_ context.Context, hash Hash32) (SongID, bool, error) {
	id, ok := tx.state.songByHash[hash]
	return id, ok, nil
}

func (tx *memTx) Artist(_ context.Context, id ArtistID) (Artist, bool, error) {
	a, ok := tx.state.artists[id]
	return a, ok, nil
}

func (tx *memTx) Song(_ context.Context, id SongID) (Song, bool, error) {
	song, ok := tx.state.songs[id]
	return song, ok, nil
}

func (tx *memTx) Counters(context.Context) (Counters, error) {
	return Counters{Artists: uint64(tx.state.lastArtist), Songs: uint64(tx.state.lastSong)}, nil
}

func (tx *memTx) NextArtistID(context.Context) (ArtistID, error) {
	prev := tx.state.lastArtist
	tx.state.lastArtist++
	tx.undo = append(tx.undo, func() { tx.state.lastArtist = prev })
	return tx.state.lastArtist, nil
}

func (tx *memTx) NextSongID(context.Context) (SongID, error) {
	prev := tx.state.lastSong
	tx.state.lastSong++
	tx.undo = append(tx.undo, func() { tx.state.lastSong = prev })
	return tx.state.lastSong, nil
}

func (tx *memTx) PutArtist(_ context.Context, artist Artist) error {
	st := tx.state
	if _, dup := st.artists[artist.ID]; dup {
		return fmt.Errorf("memstore: artist %d already exists", artist.ID)
	}
	if _, dup := st.artistByOwner[artist.Owner]; dup {
		return fmt.Errorf("memstore: owner %q already indexed", artist.Owner)
	}
	st.artists[artist.ID] = artist
	st.artistByOwner[artist.Owner] = artist.ID
	tx.undo = append(tx.undo, func() {
		delete(st.artists, artist.ID)
		delete(st.artistByOwner, artist.Owner)
	})
	return nil
}

func (tx *memTx) PutSong(_ context.Context, song Song) error {
	st := tx.state
	if _, dup := st.songs[song.ID]; dup {
		return fmt.Errorf("memstore: song %d already exists", song.ID)
	}
	if _, dup := st.songByHash[song.FileHash]; dup {
		return fmt.Errorf("memstore: file hash %s already indexed", song.FileHash)
	}
	st.songs[song.ID] = song
	st.songByHash[song.FileHash] = song.ID
	tx.undo = append(tx.undo, func() {
		delete(st.songs, song.ID)
		delete(st.songByHash, song.FileHash)
	})
	return nil
}

// Atomic nests: a failing inner fn undoes only its own writes.
func (tx *memTx) Atomic(_ context.Context, fn func(tx Store) error) error {
	mark := len(tx.undo)
	if err := fn(tx); err != nil {
		tx.rollback(mark)
		return err
	}
	return nil
}
