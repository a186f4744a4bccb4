package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(reg Registry, verifier TokenVerifier, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewRegistryHandler(reg)
	api := r.Group("/api/v1")
	{
		api.GET("/artists/:id", h.GetArtist)
		api.GET("/songs/:id", h.GetSong)
		api.GET("/owners/:principal/artist", h.GetArtistByOwner)
		api.GET("/hashes/:hash/song", h.GetSongByHash)
		api.GET("/stats", h.GetStats)
	}

	write := api.Group("", Authenticate(verifier))
	{
		write.POST("/artists", h.RegisterArtist)
		write.POST("/songs", h.RegisterSong)
	}

	return r
}
