package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/faizan/audiobits/registry"
	"github.com/gin-gonic/gin"
)

// Registry is the set of operations the HTTP surface exposes.
type Registry interface {
	RegisterArtist(ctx context.Context, caller registry.Principal, name registry.ASCII) (registry.ArtistID, error)
	RegisterSong(ctx context.Context, caller registry.Principal, title registry.ASCII, fileHash registry.Hash32) (registry.SongID, error)
	GetArtist(ctx context.Context, id registry.ArtistID) (registry.Artist, error)
	GetSong(ctx context.Context, id registry.SongID) (registry.Song, error)
	ArtistByOwner(ctx context.Context, owner registry.Principal) (registry.Artist, error)
	SongByHash(ctx context.Context, fileHash registry.Hash32) (registry.Song, error)
	Stats(ctx context.Context) (registry.Counters, error)
}

type RegistryHandler struct {
	registry Registry
}

func NewRegistryHandler(reg Registry) *RegistryHandler {
	return &RegistryHandler{registry: reg}
}

type registerArtistRequest struct {
	Name *string `json:"name" binding:"required"`
}

type registerSongRequest struct {
	Title    *string `json:"title" binding:"required"`
	FileHash string  `json:"file_hash" binding:"required"`
}

type idResponse struct {
	ID uint64 `json:"id"`
}

// RegisterArtist godoc
// @Summary Register the caller as an artist
// @Tags artists
// @Accept json
// @Produce json
// @Param body body registerArtistRequest true "Artist name"
// @Success 200 {object} Response
// @Failure 400,401,409 {object} Response
// @Router /api/v1/artists [post]
func (h *RegistryHandler) RegisterArtist(c *gin.Context) {
	var req registerArtistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	name, err := registry.NewASCII(*req.Name)
	if err != nil {
		badRequest(c, fmt.Errorf("name: %w", err))
		return
	}

	id, err := h.registry.RegisterArtist(c.Request.Context(), getPrincipal(c), name)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, idResponse{ID: uint64(id)})
}

// RegisterSong godoc
// @Summary Register a song owned by the caller's artist record
// @Tags songs
// @Accept json
// @Produce json
// @Param body body registerSongRequest true "Song title and hex file hash"
// @Success 200 {object} Response
// @Failure 400,401,403,409 {object} Response
// @Router /api/v1/songs [post]
func (h *RegistryHandler) RegisterSong(c *gin.Context) {
	var req registerSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	title, err := registry.NewASCII(*req.Title)
	if err != nil {
		badRequest(c, fmt.Errorf("title: %w", err))
		return
	}
	fileHash, err := registry.ParseHash(req.FileHash)
	if err != nil {
		badRequest(c, err)
		return
	}

	id, err := h.registry.RegisterSong(c.Request.Context(), getPrincipal(c), title, fileHash)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, idResponse{ID: uint64(id)})
}

// GetArtist godoc
// @Summary Get an artist by id
// @Tags artists
// @Produce json
// @Param id path int true "Artist id"
// @Success 200 {object} Response
// @Failure 400,404 {object} Response
// @Router /api/v1/artists/{id} [get]
func (h *RegistryHandler) GetArtist(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	artist, err := h.registry.GetArtist(c.Request.Context(), registry.ArtistID(id))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, artist)
}

// GetSong godoc
// @Summary Get a song by id
// @Tags songs
// @Produce json
// @Param id path int true "Song id"
// @Success 200 {object} Response
// @Failure 400,404 {object} Response
// @Router /api/v1/songs/{id} [get]
func (h *RegistryHandler) GetSong(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	song, err := h.registry.GetSong(c.Request.Context(), registry.SongID(id))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, song)
}

// GetArtistByOwner godoc
// @Summary Get the artist registered by a principal
// @Tags artists
// @Produce json
// @Param principal path string true "Owner principal"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/owners/{principal}/artist [get]
func (h *RegistryHandler) GetArtistByOwner(c *gin.Context) {
	artist, err := h.registry.ArtistByOwner(c.Request.Context(), registry.Principal(c.Param("principal")))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, artist)
}

// GetSongByHash godoc
// @Summary Get the song that registered a file hash
// @Tags songs
// @Produce json
// @Param hash path string true "Hex file hash"
// @Success 200 {object} Response
// @Failure 400,404 {object} Response
// @Router /api/v1/hashes/{hash}/song [get]
func (h *RegistryHandler) GetSongByHash(c *gin.Context) {
	fileHash, err := registry.ParseHash(c.Param("hash"))
	if err != nil {
		badRequest(c, err)
		return
	}
	song, err := h.registry.SongByHash(c.Request.Context(), fileHash)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, song)
}

func (h *RegistryHandler) GetStats(c *gin.Context) {
	stats, err := h.registry.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, stats)
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, errors.New("id must be an unsigned integer"))
		return 0, false
	}
	return id, true
}
