package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tilekeep/tilekeep/internal/geo"
	"github.com/tilekeep/tilekeep/internal/infrastructure/http/v1/dto"
	"github.com/tilekeep/tilekeep/internal/usecase"
)

func (h *Handler) ListRegions(c *gin.Context) {
	regions, err := h.regions.List()
	if err != nil {
		h.RespondWithInternalServerError(c)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "got regions", regions)
}

// CreateRegion persists a pending region and immediately starts its download.
func (h *Handler) CreateRegion(c *gin.Context) {
	var req dto.CreateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	bbox := geo.BBox{North: req.North, South: req.South, East: req.East, West: req.West}
	r, err := h.regions.Create(req.ID, req.Name, bbox, req.MinZoom, req.MaxZoom)
	if err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.downloader.Start(r, usecase.Callbacks{}); err != nil {
		if errors.Is(err, usecase.ErrAlreadyDownloading) {
			h.RespondWithJSON(c, http.StatusConflict, err.Error(), nil)
			return
		}
		h.RespondWithInternalServerError(c)
		return
	}

	h.RespondWithJSON(c, http.StatusCreated, "region download started", r)
}

// DownloadRegion re-starts the download of an existing region, e.g. to resume
// after a failure. Tiles already on disk are skipped.
func (h *Handler) DownloadRegion(c *gin.Context) {
	id := c.Param("id")

	r, found, err := h.regions.Get(id)
	if err != nil {
		h.RespondWithInternalServerError(c)
		return
	}
	if !found {
		h.RespondWithJSON(c, http.StatusNotFound, "region not found", nil)
		return
	}

	if err := h.downloader.Start(*r, usecase.Callbacks{}); err != nil {
		if errors.Is(err, usecase.ErrAlreadyDownloading) {
			h.RespondWithJSON(c, http.StatusConflict, err.Error(), nil)
			return
		}
		h.RespondWithInternalServerError(c)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "region download started", nil)
}

func (h *Handler) CancelRegion(c *gin.Context) {
	id := c.Param("id")

	if !h.downloader.Cancel(id) {
		h.RespondWithJSON(c, http.StatusNotFound, "no active download for region", nil)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "download cancelled", nil)
}

func (h *Handler) DeleteRegion(c *gin.Context) {
	id := c.Param("id")

	removed, err := h.regions.Remove(id)
	if err != nil {
		h.RespondWithJSON(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if !removed {
		h.RespondWithJSON(c, http.StatusNotFound, "region not found", nil)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "region removed", nil)
}

func (h *Handler) RegionProgress(c *gin.Context) {
	id := c.Param("id")

	resp := dto.ProgressResponse{
		RegionID: id,
		Progress: h.downloader.GetProgress(id),
		Active:   h.downloader.IsActive(id),
	}

	h.RespondWithJSON(c, http.StatusOK, "got progress", resp)
}

// RegionCoverage reports which downloaded region best overlaps a query box.
func (h *Handler) RegionCoverage(c *gin.Context) {
	bbox, ok := h.bboxFromQuery(c)
	if !ok {
		return
	}

	best, ratio, err := h.tiles.Coverage(bbox)
	if err != nil {
		h.RespondWithInternalServerError(c)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "got coverage", dto.CoverageResponse{
		Region: best,
		Ratio:  ratio,
	})
}

func (h *Handler) bboxFromQuery(c *gin.Context) (geo.BBox, bool) {
	var bbox geo.BBox
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"north", &bbox.North},
		{"south", &bbox.South},
		{"east", &bbox.East},
		{"west", &bbox.West},
	} {
		v, err := strconv.ParseFloat(c.Query(f.name), 64)
		if err != nil {
			h.RespondWithJSON(c, http.StatusBadRequest, f.name+" should be a number", nil)
			return bbox, false
		}
		*f.dst = v
	}

	if err := bbox.Validate(); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return bbox, false
	}

	return bbox, true
}
