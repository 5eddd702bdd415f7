package domain

import (
	"context"
	"log/slog"
)

// LabelRegion fills the exposure's Region from reverse geocoding when it is
// not already set. A nil geocoder, a lookup failure or an empty answer leaves
// the exposure unchanged; labeling never blocks an assessment.
func LabelRegion(ctx context.Context, exposure ExposurePoint, geocoder Geocoder, logger *slog.Logger) ExposurePoint {
	if geocoder == nil || exposure.Region != "" {
		return exposure
	}

	result, err := geocoder.ReverseGeocode(ctx, exposure.Location.Lat, exposure.Location.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"asset_id", exposure.ID,
			"lat", exposure.Location.Lat,
			"lon", exposure.Location.Lon,
			"error", err,
		)
		return exposure
	}

	switch {
	case result.Region != "":
		exposure.Region = result.Region
	case result.PlaceName != "":
		exposure.Region = result.PlaceName
	case result.FormattedAddress != "":
		exposure.Region = result.FormattedAddress
	}
	return exposure
}
