// Package store persists the registry in a SQL database through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faizan/audiobits/models"
	"github.com/faizan/audiobits/registry"
	"gorm.io/gorm"
)

// Store is a registry.Store over the tables in package models. The schema
// must already be migrated (see config.Migrate).
type Store struct {
	db *gorm.DB
}

var _ registry.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ArtistIDByOwner(ctx context.Context, owner registry.Principal) (registry.ArtistID, bool, error) {
	var artist models.Artist
	err := s.db.WithContext(ctx).Select("id").Where("owner = ?", string(owner)).First(&artist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query artist by owner: %w", err)
	}
	return registry.ArtistID(artist.ID), true, nil
}

func (s *Store) SongIDByHash(ctx context.Context, hash registry.Hash32) (registry.SongID, bool, error) {
	var song models.Song
	err := s.db.WithContext(ctx).Select("id").Where("file_hash = ?", hash.String()).First(&song).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query song by hash: %w", err)
	}
	return registry.SongID(song.ID), true, nil
}

func (s *Store) Artist(ctx context.Context, id registry.ArtistID) (registry.Artist, bool, error) {
	var row models.Artist
	err := s.db.WithContext(ctx).First(&row, uint64(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return registry.Artist{}, false, nil
	}
	if err != nil {
		return registry.Artist{}, false, fmt.Errorf("failed to query artist: %w", err)
	}
	return registry.Artist{
		ID:    registry.ArtistID(row.ID),
		Owner: registry.Principal(row.Owner),
		Name:  registry.ASCII(row.Name),
	}, true, nil
}

func (s *Store) Song(ctx context.Context, id registry.SongID) (registry.Song, bool, error) {
	var row models.Song
	err := s.db.WithContext(ctx).First(&row, uint64(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return registry.Song{}, false, nil
	}
	if err != nil {
		return registry.Song{}, false, fmt.Errorf("failed to query song: %w", err)
	}
	hash, err := registry.ParseHash(row.FileHash)
	if err != nil {
		return registry.Song{}, false, fmt.Errorf("song %d has a corrupt file hash: %w", row.ID, err)
	}
	return registry.Song{
		ID:       registry.SongID(row.ID),
		ArtistID: registry.ArtistID(row.ArtistID),
		Title:    registry.ASCII(row.Title),
		FileHash: hash,
	}, true, nil
}

func (s *Store) Counters(ctx context.Context) (registry.Counters, error) {
	var rows []models.Counter
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return registry.Counters{}, fmt.Errorf("failed to query counters: %w", err)
	}
	var c registry.Counters
	for _, row := range rows {
		switch row.Name {
		case models.ArtistCounter:
			c.Artists = row.Value
		case models.SongCounter:
			c.Songs = row.Value
		}
	}
	return c, nil
}

func (s *Store) NextArtistID(ctx context.Context) (registry.ArtistID, error) {
	v, err := s.increment(ctx, models.ArtistCounter)
	return registry.ArtistID(v), err
}

func (s *Store) NextSongID(ctx context.Context) (registry.SongID, error) {
	v, err := s.increment(ctx, models.SongCounter)
	return registry.SongID(v), err
}

// increment bumps the named counter and reads it back. Callers run it
// inside Atomic so the read sees the row the update locked.
func (s *Store) increment(ctx context.Context, name string) (uint64, error) {
	db := s.db.WithContext(ctx)
	res := db.Model(&models.Counter{}).Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment %s counter: %w", name, res.Error)
	}
	if res.RowsAffected != 1 {
		return 0, fmt.Errorf("%s counter is missing; run migrations", name)
	}
	var counter models.Counter
	if err := db.Where("name = ?", name).First(&counter).Error; err != nil {
		return 0, fmt.Errorf("failed to read %s counter: %w", name, err)
	}
	return counter.Value, nil
}

func (s *Store) PutArtist(ctx context.Context, artist registry.Artist) error {
	row := &models.Artist{
		ID:        uint64(artist.ID),
		Owner:     string(artist.Owner),
		Name:      string(artist.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to store artist: %w", err)
	}
	return nil
}

func (s *Store) PutSong(ctx context.Context, song registry.Song) error {
	row := &models.Song{
		ID:        uint64(song.ID),
		ArtistID:  uint64(song.ArtistID),
		Title:     string(song.Title),
		FileHash:  song.FileHash.String(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to store song: %w", err)
	}
	return nil
}

// Atomic runs fn in a database transaction. Nested calls use savepoints.
func (s *Store) Atomic(ctx context.Context, fn func(tx registry.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
