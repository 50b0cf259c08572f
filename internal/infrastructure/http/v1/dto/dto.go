package dto

import "github.com/tilekeep/tilekeep/internal/repository/region"

type CreateRegionRequest struct {
	ID      string  `json:"id"`
	Name    string  `json:"name" validate:"required"`
	North   float64 `json:"north" validate:"gte=-90,lte=90"`
	South   float64 `json:"south" validate:"gte=-90,lte=90"`
	East    float64 `json:"east" validate:"gte=-180,lte=180"`
	West    float64 `json:"west" validate:"gte=-180,lte=180"`
	MinZoom int     `json:"minZoom" validate:"gte=0,lte=22"`
	MaxZoom int     `json:"maxZoom" validate:"gte=0,lte=22"`
}

type EstimateRequest struct {
	North   float64 `json:"north" validate:"gte=-90,lte=90"`
	South   float64 `json:"south" validate:"gte=-90,lte=90"`
	East    float64 `json:"east" validate:"gte=-180,lte=180"`
	West    float64 `json:"west" validate:"gte=-180,lte=180"`
	MinZoom int     `json:"minZoom" validate:"gte=0,lte=22"`
	MaxZoom int     `json:"maxZoom" validate:"gte=0,lte=22"`
	// Style picks the default tile payload: raster, vector or satellite.
	Style string `json:"style"`
	// AvgTileSizeKB overrides the style default when positive.
	AvgTileSizeKB float64 `json:"avgTileSizeKB"`
	SpeedMbps     float64 `json:"speedMbps"`
}

type EstimateResponse struct {
	TotalTiles   int     `json:"totalTiles"`
	SizeKB       float64 `json:"sizeKB"`
	DownloadTime string  `json:"downloadTime,omitempty"`
	AreaKm2      float64 `json:"areaKm2"`
}

type ProgressResponse struct {
	RegionID string  `json:"regionId"`
	Progress float64 `json:"progress"`
	Active   bool    `json:"active"`
}

type CoverageResponse struct {
	Region *region.OfflineRegion `json:"region,omitempty"`
	Ratio  float64               `json:"ratio"`
}
