// internal/app/features/communities/geo.go
package communities

import (
	"math"
	"net/http"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
)

// Browser geolocation error codes (GeolocationPositionError.code).
const (
	geoPermissionDenied    = 1
	geoPositionUnavailable = 2
	geoTimeout             = 3
)

var geoErrors = map[int]string{
	geoPermissionDenied:    "Location permission was denied. Allow location access in the browser and try again.",
	geoPositionUnavailable: "Your position is unavailable right now.",
	geoTimeout:             "Timed out while getting your location.",
}

// locateInput is what the client's geolocation call produced: either a
// position or an error code.
type locateInput struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	ErrorCode int      `json:"error_code"`
}

// validGeo reports whether g is inside WGS84 bounds.
func validGeo(g models.GeoPoint) bool {
	return !math.IsNaN(g.Lat) && !math.IsNaN(g.Lng) &&
		g.Lat >= -90 && g.Lat <= 90 &&
		g.Lng >= -180 && g.Lng <= 180
}

// roundGeo keeps six decimals (about 10 cm).
func roundGeo(g models.GeoPoint) models.GeoPoint {
	const scale = 1e6
	return models.GeoPoint{
		Lat: math.Round(g.Lat*scale) / scale,
		Lng: math.Round(g.Lng*scale) / scale,
	}
}

// HandleLocate turns a client geolocation result into a coordinate pair
// for the community form, or a readable error.
func (h *Handler) HandleLocate(w http.ResponseWriter, r *http.Request) {
	var in locateInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}

	if in.ErrorCode != 0 {
		msg, ok := geoErrors[in.ErrorCode]
		if !ok {
			msg = "Could not get your location."
		}
		uierrors.RenderError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if in.Latitude == nil || in.Longitude == nil {
		uierrors.RenderValidation(w, map[string]string{"geo": "Latitude and longitude are required."})
		return
	}

	g := models.GeoPoint{Lat: *in.Latitude, Lng: *in.Longitude}
	if !validGeo(g) {
		uierrors.RenderValidation(w, map[string]string{"geo": "Coordinates are out of range."})
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, roundGeo(g))
}
