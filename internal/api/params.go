package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mapsnap/mapsnap/internal/staticmap"
)

// Errors
var (
	ErrMissingCenter = fmt.Errorf("Missing center parameter")
	ErrInvalidZoom   = fmt.Errorf("Invalid zoom")
	ErrInvalidSensor = fmt.Errorf("Invalid sensor")
)

// getRequest builds a static map request from the query parameters.
// Values we don't interpret are passed through as-is, the upstream API is
// the source of truth for their validity.
func getRequest(r *http.Request) (*staticmap.Request, error) {
	query := r.URL.Query()

	center := query.Get("center")
	if center == "" {
		return nil, ErrMissingCenter
	}

	req, _ := staticmap.New(center)

	if val := query.Get("zoom"); val != "" {
		zoom, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, ErrInvalidZoom
		}

		req.Zoom(zoom)
	}

	if val := query.Get("size"); val != "" {
		req.Size(val)
	}

	if val := query.Get("format"); val != "" {
		req.Format(staticmap.Format(val))
	}

	if val := query.Get("maptype"); val != "" {
		req.MapType(staticmap.MapType(val))
	}

	if val := query.Get("language"); val != "" {
		req.Language(val)
	}

	if val := query.Get("region"); val != "" {
		req.Region(val)
	}

	for _, marker := range query["markers"] {
		req.Marker(marker)
	}

	if val := query.Get("path"); val != "" {
		req.Path(val)
	}

	if val := query.Get("visible"); val != "" {
		req.Visible(val)
	}

	for _, style := range query["style"] {
		req.Style(style)
	}

	if val := query.Get("sensor"); val != "" {
		sensor, err := strconv.ParseBool(val)
		if err != nil {
			return nil, ErrInvalidSensor
		}

		req.Sensor(sensor)
	}

	return req, nil
}
