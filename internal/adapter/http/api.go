package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

const (
	maxRequestBytes = 4 << 20
	curveGridPoints = 100
)

type assetTypesResponse struct {
	AssetTypes []domain.AssetType `json:"asset_types"`
}

type curveResponse struct {
	domain.CurvePoints
	RequestedAsset domain.AssetKind `json:"requested_asset"`
}

func (s *Server) handleAssetTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, assetTypesResponse{AssetTypes: s.engine.Catalog().AssetTypes()})
}

// handleCurve exports a curve with a fine grid for charting. Asset kinds
// without their own curve resolve to GENERIC and report fallback=true.
func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	hazard, err := domain.ParseHazardKind(r.PathValue("hazard"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	asset, err := domain.ParseAssetKind(r.PathValue("asset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.engine.Catalog().Resolve(hazard, asset)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	points := res.Curve.Points(curveGridPoints)
	points.Fallback = res.Fallback
	writeJSON(w, http.StatusOK, curveResponse{CurvePoints: points, RequestedAsset: res.Requested})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req, err := assessment.ParseRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.engine.Assess(r.Context(), req)
	if err != nil {
		status := assessStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("assessment failed", "asset_id", req.Asset.ID, "error", err)
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func assessStatus(err error) int {
	switch {
	case errors.Is(err, assessment.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrInvalidHazardData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
