package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tilekeep/tilekeep/internal/estimate"
	"github.com/tilekeep/tilekeep/internal/geo"
	"github.com/tilekeep/tilekeep/internal/infrastructure/http/v1/dto"
)

// Estimate returns pre-download tile count, payload size, expected duration
// and covered area for a prospective region.
func (h *Handler) Estimate(c *gin.Context) {
	var req dto.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	bbox := geo.BBox{North: req.North, South: req.South, East: req.East, West: req.West}
	if err := bbox.Validate(); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.MinZoom > req.MaxZoom {
		h.RespondWithJSON(c, http.StatusBadRequest, "minZoom must not exceed maxZoom", nil)
		return
	}

	avgKB := req.AvgTileSizeKB
	if avgKB <= 0 {
		avgKB = estimate.AvgTileSizeKB(req.Style)
	}

	sizeKB := estimate.SizeKB(bbox, req.MinZoom, req.MaxZoom, avgKB)

	resp := dto.EstimateResponse{
		TotalTiles: geo.TotalTiles(bbox, req.MinZoom, req.MaxZoom),
		SizeKB:     sizeKB,
		AreaKm2:    estimate.AreaKm2(bbox),
	}
	if req.SpeedMbps > 0 {
		resp.DownloadTime = estimate.DownloadTime(sizeKB, req.SpeedMbps)
	}

	h.RespondWithJSON(c, http.StatusOK, "got estimate", resp)
}
