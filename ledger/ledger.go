// Package ledger hosts the registry. It plays the part of the transaction
// host: write operations are serialized and each runs in one store
// transaction, reads are served from a cache of immutable records, and every
// operation is traced and logged.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/faizan/audiobits/cache"
	"github.com/faizan/audiobits/logger"
	"github.com/faizan/audiobits/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/faizan/audiobits/ledger"

// ErrNoPrincipal is returned for write calls without a caller identity.
var ErrNoPrincipal = errors.New("ledger: caller principal is required")

type Ledger struct {
	store   registry.Store
	writeMu sync.Mutex

	artists *cache.Cache[registry.Artist]
	songs   *cache.Cache[registry.Song]

	log    *slog.Logger
	tracer trace.Tracer
}

type Option func(*Ledger)

// WithLogger sets the base logger. Request-scoped loggers attached with
// logger.WithLogger take precedence.
func WithLogger(l *slog.Logger) Option {
	return func(lg *Ledger) { lg.log = l }
}

// WithCacheExpiration sets how long records stay cached.
func WithCacheExpiration(expiration, cleanupInterval time.Duration) Option {
	return func(lg *Ledger) {
		lg.artists = cache.New[registry.Artist](expiration, cleanupInterval)
		lg.songs = cache.New[registry.Song](expiration, cleanupInterval)
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(lg *Ledger) { lg.tracer = tp.Tracer(tracerName) }
}

func New(store registry.Store, opts ...Option) *Ledger {
	lg := &Ledger{
		store:   store,
		artists: cache.New[registry.Artist](10*time.Minute, 30*time.Minute),
		songs:   cache.New[registry.Song](10*time.Minute, 30*time.Minute),
		log:     logger.Discard(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// RegisterArtist registers caller as an artist.
func (l *Ledger) RegisterArtist(ctx context.Context, caller registry.Principal, name registry.ASCII) (registry.ArtistID, error) {
	ctx, span := l.tracer.Start(ctx, "register-artist", trace.WithAttributes(
		attribute.String("registry.caller", string(caller)),
	))
	defer span.End()

	var id registry.ArtistID
	err := l.write(ctx, caller, func(reg *registry.Registry) error {
		var err error
		id, err = reg.RegisterArtist(ctx, caller, name)
		return err
	})
	if err == nil {
		span.SetAttributes(attribute.Int64("registry.artist_id", int64(id)))
	}
	l.finish(ctx, span, "register-artist", err,
		slog.String("caller", string(caller)), slog.Uint64("artist_id", uint64(id)))
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RegisterSong registers a song for the caller's artist record.
func (l *Ledger) RegisterSong(ctx context.Context, caller registry.Principal, title registry.ASCII, fileHash registry.Hash32) (registry.SongID, error) {
	ctx, span := l.tracer.Start(ctx, "register-song", trace.WithAttributes(
		attribute.String("registry.caller", string(caller)),
		attribute.String("registry.file_hash", fileHash.String()),
	))
	defer span.End()

	var id registry.SongID
	err := l.write(ctx, caller, func(reg *registry.Registry) error {
		var err error
		id, err = reg.RegisterSong(ctx, caller, title, fileHash)
		return err
	})
	if err == nil {
		span.SetAttributes(attribute.Int64("registry.song_id", int64(id)))
	}
	l.finish(ctx, span, "register-song", err,
		slog.String("caller", string(caller)), slog.String("file_hash", fileHash.String()), slog.Uint64("song_id", uint64(id)))
	if err != nil {
		return 0, err
	}
	return id, nil
}

// write applies op as a single serialized transaction.
func (l *Ledger) write(ctx context.Context, caller registry.Principal, op func(reg *registry.Registry) error) error {
	if caller == "" {
		return ErrNoPrincipal
	}
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	return l.store.Atomic(ctx, func(tx registry.Store) error {
		return op(registry.New(tx))
	})
}

func (l *Ledger) GetArtist(ctx context.Context, id registry.ArtistID) (registry.Artist, error) {
	ctx, span := l.tracer.Start(ctx, "get-artist", trace.WithAttributes(
		attribute.Int64("registry.artist_id", int64(id)),
	))
	defer span.End()

	key := artistKey(id)
	if artist, ok := l.artists.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return artist, nil
	}
	artist, err := registry.New(l.store).GetArtist(ctx, id)
	l.finish(ctx, span, "get-artist", err, slog.Uint64("artist_id", uint64(id)))
	if err != nil {
		return registry.Artist{}, err
	}
	l.artists.Set(key, artist)
	return artist, nil
}

func (l *Ledger) GetSong(ctx context.Context, id registry.SongID) (registry.Song, error) {
	ctx, span := l.tracer.Start(ctx, "get-song", trace.WithAttributes(
		attribute.Int64("registry.song_id", int64(id)),
	))
	defer span.End()

	key := songKey(id)
	if song, ok := l.songs.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return song, nil
	}
	song, err := registry.New(l.store).GetSong(ctx, id)
	l.finish(ctx, span, "get-song", err, slog.Uint64("song_id", uint64(id)))
	if err != nil {
		return registry.Song{}, err
	}
	l.songs.Set(key, song)
	return song, nil
}

// ArtistByOwner resolves the owner index and returns the artist record.
func (l *Ledger) ArtistByOwner(ctx context.Context, owner registry.Principal) (registry.Artist, error) {
	ctx, span := l.tracer.Start(ctx, "get-artist-by-owner", trace.WithAttributes(
		attribute.String("registry.owner", string(owner)),
	))
	defer span.End()

	id, found, err := l.store.ArtistIDByOwner(ctx, owner)
	if err == nil && !found {
		err = registry.ErrNotFound
	}
	l.finish(ctx, span, "get-artist-by-owner", err, slog.String("owner", string(owner)))
	if err != nil {
		return registry.Artist{}, err
	}
	return l.GetArtist(ctx, id)
}

// SongByHash resolves the file hash index and returns the song record.
func (l *Ledger) SongByHash(ctx context.Context, fileHash registry.Hash32) (registry.Song, error) {
	ctx, span := l.tracer.Start(ctx, "get-song-by-hash", trace.WithAttributes(
		attribute.String("registry.file_hash", fileHash.String()),
	))
	defer span.End()

	id, found, err := l.store.SongIDByHash(ctx, fileHash)
	if err == nil && !found {
		err = registry.ErrNotFound
	}
	l.finish(ctx, span, "get-song-by-hash", err, slog.String("file_hash", fileHash.String()))
	if err != nil {
		return registry.Song{}, err
	}
	return l.GetSong(ctx, id)
}

func (l *Ledger) Stats(ctx context.Context) (registry.Counters, error) {
	ctx, span := l.tracer.Start(ctx, "stats")
	defer span.End()

	c, err := registry.New(l.store).Stats(ctx)
	l.finish(ctx, span, "stats", err)
	return c, err
}

// finish records the outcome on span and logs it. Registry rejections are
// expected outcomes; anything else is a storage failure.
func (l *Ledger) finish(ctx context.Context, span trace.Span, op string, err error, attrs ...slog.Attr) {
	log := logger.FromContext(ctx, l.log)
	if err == nil {
		span.SetStatus(codes.Ok, "")
		if op == "register-artist" || op == "register-song" {
			log.LogAttrs(ctx, slog.LevelInfo, op, attrs...)
		}
		return
	}

	if code, ok := registry.CodeOf(err); ok {
		span.SetAttributes(
			attribute.Int("registry.error_code", int(code)),
			attribute.String("registry.error", code.String()),
		)
		if code != registry.CodeNotFound {
			log.LogAttrs(ctx, slog.LevelWarn, op+" rejected",
				append(attrs, slog.String("code", code.String()))...)
		}
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.LogAttrs(ctx, slog.LevelError, op+" failed", append(attrs, slog.String("error", err.Error()))...)
}

func artistKey(id registry.ArtistID) string {
	return "artist:" + strconv.FormatUint(uint64(id), 10)
}

func songKey(id registry.SongID) string {
	return "song:" + strconv.FormatUint(uint64(id), 10)
}
