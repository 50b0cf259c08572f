package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tilekeep/tilekeep/internal/geo"
)

// Tile serves one tile through the cache lookup chain. When every tier and
// the network fail, the synthesized placeholder is served so the client always
// has something to render.
func (h *Handler) Tile(c *gin.Context) {
	z, err := strconv.Atoi(c.Param("z"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "z should be integer",
		})
		return
	}

	x, err := strconv.Atoi(c.Param("x"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "x should be integer",
		})
		return
	}

	y, err := strconv.Atoi(c.Param("y"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "y should be integer",
		})
		return
	}

	coord := geo.TileCoordinate{X: x, Y: y, Z: z}
	if !coord.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "tile coordinate out of range for zoom",
		})
		return
	}

	data, err := h.tiles.GetTile(c.Request.Context(), coord)
	if err != nil {
		fb, fbErr := h.tiles.FallbackTile()
		if fbErr != nil {
			h.RespondWithInternalServerError(c)
			return
		}
		c.Data(http.StatusOK, "image/png", fb)
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
