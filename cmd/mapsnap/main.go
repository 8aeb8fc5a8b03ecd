package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/mapsnap/mapsnap/internal/logger"
	"github.com/mapsnap/mapsnap/internal/staticmap"
	"github.com/mapsnap/mapsnap/internal/storage"
	fileStorage "github.com/mapsnap/mapsnap/internal/storage/file"
	"github.com/mapsnap/mapsnap/internal/storage/spaces"

	"github.com/disintegration/imaging"
	"github.com/jamiealquiza/envy"
	"github.com/twmb/murmur3"
	"go.uber.org/zap"
)

// multiFlag collects the values of a repeatable flag
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

// Commandline flags
var (
	// Request
	markers  multiFlag
	styles   multiFlag
	center   = flag.String("center", "", "map center, a coordinate pair or an address (required)")
	zoom     = flag.Float64("zoom", staticmap.DefaultZoom, "zoom level")
	size     = flag.String("size", staticmap.DefaultSize, "image dimensions as WxH")
	format   = flag.String("format", string(staticmap.PNG), "image format (png, png32, gif, jpg, jpg-baseline)")
	maptype  = flag.String("maptype", string(staticmap.Roadmap), "map type (roadmap, satellite, terrain, hybrid)")
	language = flag.String("language", "", "label language")
	region   = flag.String("region", "", "two-letter region code for borders")
	path     = flag.String("path", "", "path definition")
	visible  = flag.String("visible", "", "locations that must stay visible")
	sensor   = flag.Bool("sensor", false, "report a location sensor")

	// Output
	urlOnly = flag.Bool("url", false, "print the request URL instead of fetching the image")
	out     = flag.String("out", "", "output name, derived from the request if empty; the extension picks the stored format")
	quality = flag.Int("quality", 90, "jpeg quality when re-encoding")
	timeout = flag.Duration("timeout", staticmap.DefaultTimeout, "fetch timeout")

	// Storage
	storageBackend         = flag.String("storage", "file", "which storage backend to use (file, spaces)")
	storageFilePath        = flag.String("storage-file-path", ".", "directory to store images in")
	storageSpacesSpace     = flag.String("storage-spaces-space", "", "digitalocean space to use")
	storageSpacesEndpoint  = flag.String("storage-spaces-endpoint", "", "spaces endpoint")
	storageSpacesAccessKey = flag.String("storage-spaces-access-key", "", "spaces access key")
	storageSpacesSecretKey = flag.String("storage-spaces-secret-key", "", "spaces secret key")

	loglevel = zap.LevelFlag("log-level", zap.InfoLevel, "log level (default \"info\") (debug, info, warn, error, dpanic, panic, fatal)")
)

func main() {
	flag.Var(&markers, "marker", "marker definition (may be given multiple times)")
	flag.Var(&styles, "style", "style rule (may be given multiple times)")

	// Parse environment variables
	envy.Parse("MAPSNAP")

	// Parse commandline flags
	flag.Parse()

	// Initialize the logger
	log := logger.New(*loglevel)
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func run(log *logger.Logger) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}

	url, err := req.URL()
	if err != nil {
		return err
	}

	if *urlOnly {
		fmt.Println(url)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := staticmap.NewClient()
	client.HTTPClient.Timeout = *timeout

	img, err := client.Image(ctx, req)
	if err != nil {
		return err
	}

	key := *out
	if key == "" {
		key = defaultKey(url, img.ContentType)
	}

	data, contentType, err := encodeForOutput(img, key)
	if err != nil {
		return err
	}

	provider, err := setupStorage()
	if err != nil {
		return err
	}

	if err := provider.Put(ctx, key, data, contentType); err != nil {
		return err
	}

	log.Infow("image stored",
		"key", key,
		"content-type", contentType,
		"bytes", len(data),
	)

	return nil
}

func buildRequest() (*staticmap.Request, error) {
	req, err := staticmap.New(*center)
	if err != nil {
		return nil, err
	}

	req.Zoom(*zoom).
		Size(*size).
		Format(staticmap.Format(*format)).
		MapType(staticmap.MapType(*maptype)).
		Language(*language).
		Region(*region).
		Path(*path).
		Visible(*visible).
		Sensor(*sensor)

	for _, marker := range markers {
		req.Marker(marker)
	}

	for _, style := range styles {
		req.Style(style)
	}

	return req, nil
}

// encodeForOutput re-encodes the image when the output extension asks for a
// different format than the one the API returned
func encodeForOutput(img *staticmap.Image, key string) ([]byte, string, error) {
	format, err := imaging.FormatFromFilename(key)
	if err != nil {
		// Unknown extension, store the fetched bytes as-is
		return img.Data, img.ContentType, nil
	}

	contentType := staticmap.ContentType(format)
	if contentType == img.ContentType {
		return img.Data, img.ContentType, nil
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf, format, imaging.JPEGQuality(*quality)); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), contentType, nil
}

// defaultKey derives a stable output name from the request URL
func defaultKey(url, contentType string) string {
	extension := ".png"

	switch contentType {
	case "image/gif":
		extension = ".gif"
	case "image/jpeg":
		extension = ".jpg"
	}

	return fmt.Sprintf("map-%x%s", murmur3.StringSum64(url), extension)
}

func setupStorage() (storage.Provider, error) {
	switch *storageBackend {
	case "file":
		return fileStorage.New(*storageFilePath)
	case "spaces":
		return spaces.New(*storageSpacesSpace, *storageSpacesEndpoint, *storageSpacesAccessKey, *storageSpacesSecretKey)
	default:
		return nil, fmt.Errorf("invalid storage backend")
	}
}
