// Package staticmap builds, fetches and decodes Google Static Maps API requests.
package staticmap

import (
	"net/url"
	"strconv"
	"strings"
)

// Endpoint is the static map API endpoint
const Endpoint = "https://maps.googleapis.com/maps/api/staticmap"

// Defaults for parameters the API always receives
const (
	DefaultZoom = 10
	DefaultSize = "500x400"
)

// Format is the image format to request from the API
type Format string

// Supported output formats
const (
	PNG         Format = "png"
	PNG32       Format = "png32"
	GIF         Format = "gif"
	JPG         Format = "jpg"
	JPGBaseline Format = "jpg-baseline"
)

// MapType is the type of map to request
type MapType string

// Supported map types
const (
	Roadmap   MapType = "roadmap"
	Satellite MapType = "satellite"
	Terrain   MapType = "terrain"
	Hybrid    MapType = "hybrid"
)

// Request models a single static map image request.
// The zero value is not usable, use New.
// A Request is not safe for concurrent use.
type Request struct {
	// Location parameters
	center string
	zoom   int

	// Map parameters
	size     string
	format   Format
	maptype  MapType
	language string
	region   string

	// Feature parameters
	markers []string
	path    string
	visible string
	styles  []string

	// Reporting parameters
	sensor bool
}

// New creates a new request, optionally seeded with a location.
// Passing more than one location is an error.
func New(location ...string) (*Request, error) {
	if len(location) > 1 {
		return nil, ErrTooManyLocations
	}

	r := &Request{
		zoom:    DefaultZoom,
		size:    DefaultSize,
		format:  PNG,
		maptype: Roadmap,
	}

	if len(location) == 1 {
		r.center = location[0]
	}

	return r, nil
}

// Location sets the center of the map, as a coordinate pair or an address
func (r *Request) Location(center string) *Request {
	r.center = center
	return r
}

// Zoom sets the zoom level.
// The API only accepts whole zoom levels, fractional values are truncated.
func (r *Request) Zoom(zoom float64) *Request {
	r.zoom = int(zoom)
	return r
}

// Size sets the image dimensions as a "WxH" string.
// The value is passed through as-is, the API validates it.
func (r *Request) Size(size string) *Request {
	r.size = size
	return r
}

// Format sets the image format
func (r *Request) Format(format Format) *Request {
	r.format = format
	return r
}

// MapType sets the map type
func (r *Request) MapType(maptype MapType) *Request {
	r.maptype = maptype
	return r
}

// Language sets the label language
func (r *Request) Language(language string) *Request {
	r.language = language
	return r
}

// Region sets the two-letter region code for border rendering
func (r *Request) Region(region string) *Request {
	r.region = region
	return r
}

// Marker appends a marker definition, keeping any previously added markers
func (r *Request) Marker(marker string) *Request {
	r.markers = append(r.markers, marker)
	return r
}

// Path sets the path definition
func (r *Request) Path(path string) *Request {
	r.path = path
	return r
}

// Visible sets the locations that must remain visible
func (r *Request) Visible(visible string) *Request {
	r.visible = visible
	return r
}

// Style appends a style rule, keeping any previously added rules
func (r *Request) Style(style string) *Request {
	r.styles = append(r.styles, style)
	return r
}

// Sensor reports whether the request comes from a device with a location sensor
func (r *Request) Sensor(sensor bool) *Request {
	r.sensor = sensor
	return r
}

// queryParam is one parameter in its declared position
type queryParam struct {
	key   string
	value interface{}
}

// params returns the parameter groups flattened into a single
// declaration-ordered list. Keys are unique across all groups.
func (r *Request) params() []queryParam {
	return []queryParam{
		// Location
		{"center", r.center},
		{"zoom", r.zoom},
		// Map
		{"size", r.size},
		{"format", string(r.format)},
		{"maptype", string(r.maptype)},
		{"language", r.language},
		{"region", r.region},
		// Feature
		{"markers", r.markers},
		{"path", r.path},
		{"visible", r.visible},
		{"style", r.styles},
		// Reporting
		{"sensor", r.sensor},
	}
}

// Query builds the query string for the request, including the leading "?".
// Booleans are stringified, slices become one key=value pair per element,
// and unset values are omitted. Reading the query does not consume any state.
func (r *Request) Query() string {
	var buf strings.Builder

	for _, p := range r.params() {
		switch value := p.value.(type) {
		case bool:
			addQueryParam(&buf, p.key, strconv.FormatBool(value))
		case int:
			addQueryParam(&buf, p.key, strconv.Itoa(value))
		case []string:
			for _, item := range value {
				addQueryParam(&buf, p.key, item)
			}
		case string:
			if value == "" {
				continue
			}

			addQueryParam(&buf, p.key, value)
		}
	}

	return buf.String()
}

// addQueryParam adds a query parameter to a string builder
func addQueryParam(buf *strings.Builder, key, value string) {
	if buf.Len() > 0 {
		buf.WriteByte('&')
	} else {
		buf.WriteByte('?')
	}

	buf.WriteString(url.QueryEscape(key))
	buf.WriteByte('=')
	buf.WriteString(url.QueryEscape(value))
}

// URL returns the full request URL. A center must be set first.
func (r *Request) URL() (string, error) {
	return r.url(Endpoint)
}

func (r *Request) url(base string) (string, error) {
	if r.center == "" {
		return "", ErrMissingLocation
	}

	return base + r.Query(), nil
}
