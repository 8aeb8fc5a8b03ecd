package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/twmb/murmur3"

	"github.com/mapsnap/mapsnap/internal/handler"
)

type mapResult struct {
	data        []byte
	contentType string
}

func (a *API) mapHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	// Build the upstream request from the query parameters
	req, err := getRequest(r)
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	url, err := req.URL()
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	// Collapse identical concurrent requests into a single upstream fetch
	v, err, _ := a.lookupGroup.Do(url, func() (interface{}, error) {
		ctx, span := a.Tracer.Start(r.Context(), "api.fetchMap")
		defer span.End()

		data, contentType, err := a.Upstream.Fetch(ctx, req)
		if err != nil {
			return nil, err
		}

		return &mapResult{data, contentType}, nil
	})
	if err != nil {
		a.logError(r, "error fetching map from upstream", err)
		return handler.BadGateway("upstream fetch failed")
	}

	result, _ := v.(*mapResult)

	// Set the headers
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", buildFilename(url, result.contentType)))
	w.Header().Set("Content-Type", result.contentType)
	w.Header().Set("ETag", strconv.Quote(urlHash(url)))

	// Return the image
	w.Write(result.data)

	return nil
}

func (a *API) urlHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	req, err := getRequest(r)
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	url, err := req.URL()
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	var data = struct {
		URL string `json:"url"`
	}{url}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return handler.InternalServerError()
	}

	return nil
}

// urlHash returns a stable hash of the canonical upstream URL
func urlHash(url string) string {
	return strconv.FormatUint(murmur3.StringSum64(url), 16)
}

func buildFilename(url, contentType string) string {
	extension := ".png"

	switch contentType {
	case "image/gif":
		extension = ".gif"
	case "image/jpeg":
		extension = ".jpg"
	}

	return "map-" + urlHash(url) + extension
}
