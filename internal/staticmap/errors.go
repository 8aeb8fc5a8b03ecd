package staticmap

import "errors"

// Errors
var (
	// ErrTooManyLocations is returned by New when more than one initial location is given
	ErrTooManyLocations = errors.New("at most one initial location may be given")

	// ErrMissingLocation is returned when a request is materialized without a center
	ErrMissingLocation = errors.New("missing location")

	// ErrNotImage is returned when the upstream response is not image data
	ErrNotImage = errors.New("not an image")

	// ErrUnsupportedFormat is returned for image formats we can't decode
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDecode is returned when the payload does not decode as its advertised format
	ErrDecode = errors.New("decode failed")
)
