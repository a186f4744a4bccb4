package ledger

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/faizan/audiobits/logger"
	"github.com/faizan/audiobits/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func hashOf(b byte) registry.Hash32 {
	return registry.Hash32(bytes.Repeat([]byte{b}, registry.HashSize))
}

// countingStore counts song lookups by id so cache hits can be observed.
type countingStore struct {
	registry.Store
	mu        sync.Mutex
	songReads int
}

func (c *countingStore) Song(ctx context.Context, id registry.SongID) (registry.Song, bool, error) {
	c.mu.Lock()
	c.songReads++
	c.mu.Unlock()
	return c.Store.Song(ctx, id)
}

func newTestLedger(t *testing.T, store registry.Store) (*Ledger, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return New(store, WithTracerProvider(tp), WithLogger(logger.Discard())), rec
}

func TestLedgerScenario(t *testing.T) {
	ctx := context.Background()
	lg, _ := newTestLedger(t, registry.NewMemStore())

	id, err := lg.RegisterArtist(ctx, "wallet_1", "John Doe")
	require.NoError(t, err)
	assert.Equal(t, registry.ArtistID(1), id)

	_, err = lg.RegisterArtist(ctx, "wallet_1", "Jane Doe")
	require.ErrorIs(t, err, registry.ErrAlreadyRegistered)

	songID, err := lg.RegisterSong(ctx, "wallet_1", "My First Song", hashOf(0x01))
	require.NoError(t, err)
	assert.Equal(t, registry.SongID(1), songID)

	song, err := lg.GetSong(ctx, songID)
	require.NoError(t, err)
	assert.Equal(t, registry.Song{ID: 1, ArtistID: 1, Title: "My First Song", FileHash: hashOf(0x01)}, song)

	_, err = lg.RegisterSong(ctx, "wallet_2", "My First Song", hashOf(0x02))
	require.ErrorIs(t, err, registry.ErrNotArtist)

	_, err = lg.RegisterSong(ctx, "wallet_1", "Song Two", hashOf(0x01))
	require.ErrorIs(t, err, registry.ErrDuplicateFileHash)

	artist, err := lg.ArtistByOwner(ctx, "wallet_1")
	require.NoError(t, err)
	assert.Equal(t, registry.ASCII("John Doe"), artist.Name)

	bySong, err := lg.SongByHash(ctx, hashOf(0x01))
	require.NoError(t, err)
	assert.Equal(t, song, bySong)

	_, err = lg.ArtistByOwner(ctx, "wallet_2")
	require.ErrorIs(t, err, registry.ErrNotFound)

	stats, err := lg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, registry.Counters{Artists: 1, Songs: 1}, stats)
}

func TestWriteRequiresPrincipal(t *testing.T) {
	lg, _ := newTestLedger(t, registry.NewMemStore())
	_, err := lg.RegisterArtist(context.Background(), "", "John Doe")
	require.ErrorIs(t, err, ErrNoPrincipal)
}

func TestReadsAreCachedOnlyWhenFound(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: registry.NewMemStore()}
	lg, _ := newTestLedger(t, store)

	_, err := lg.GetSong(ctx, 1)
	require.ErrorIs(t, err, registry.ErrNotFound)

	_, err = lg.RegisterArtist(ctx, "wallet_1", "John Doe")
	require.NoError(t, err)
	_, err = lg.RegisterSong(ctx, "wallet_1", "My First Song", hashOf(0x01))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := lg.GetSong(ctx, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, store.songReads, "one miss before registration, one load after")
}

func TestConcurrentWritesStayDense(t *testing.T) {
	ctx := context.Background()
	lg, _ := newTestLedger(t, registry.NewMemStore())

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller := registry.Principal(fmt.Sprintf("wallet_%d", i))
			_, err := lg.RegisterArtist(ctx, caller, "Artist")
			assert.NoError(t, err)
			_, err = lg.RegisterSong(ctx, caller, "Song", hashOf(byte(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stats, err := lg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, registry.Counters{Artists: n, Songs: n}, stats)
	for id := registry.SongID(1); id <= n; id++ {
		_, err := lg.GetSong(ctx, id)
		assert.NoError(t, err, "song %d", id)
	}
}

func TestSpansCarryErrorCodes(t *testing.T) {
	ctx := context.Background()
	lg, rec := newTestLedger(t, registry.NewMemStore())

	_, err := lg.RegisterSong(ctx, "wallet_2", "Song", hashOf(0x01))
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "register-song", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, int64(104), attrs["registry.error_code"].AsInt64())
	assert.Equal(t, "NOT_ARTIST", attrs["registry.error"].AsString())
	assert.Equal(t, "wallet_2", attrs["registry.caller"].AsString())
}
