package staticmap

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

// Image is a decoded static map image along with the bytes it was decoded from
type Image struct {
	image.Image

	// ContentType is the media type the image was served with
	ContentType string

	// Data is the raw image data as fetched
	Data []byte
}

// Decode decodes image data by its reported content type.
// The content type picks the decoder, so a payload that does not match its
// advertised format fails with ErrDecode rather than being decoded as
// something else. An empty content type is sniffed from the data.
func Decode(data []byte, contentType string) (*Image, error) {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	mediatype, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediatype = contentType
	}

	var decoded image.Image
	switch mediatype {
	case "image/png":
		decoded, err = png.Decode(bytes.NewReader(data))
	case "image/gif":
		decoded, err = gif.Decode(bytes.NewReader(data))
	case "image/jpeg":
		decoded, err = jpeg.Decode(bytes.NewReader(data))
	default:
		if strings.HasPrefix(mediatype, "image/") {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediatype)
		}

		return nil, fmt.Errorf("%w: %s", ErrNotImage, mediatype)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}

	return &Image{
		Image:       decoded,
		ContentType: mediatype,
		Data:        data,
	}, nil
}

// Save writes the image to the given path, with the format determined by the
// file extension. Pass imaging.JPEGQuality to control jpeg quality.
func (i *Image) Save(path string, opts ...imaging.EncodeOption) error {
	return imaging.Save(i.Image, path, opts...)
}

// Encode writes the image to w in the given format
func (i *Image) Encode(w io.Writer, format imaging.Format, opts ...imaging.EncodeOption) error {
	return imaging.Encode(w, i.Image, format, opts...)
}

// Send writes the image as a http response body in the given format
func (i *Image) Send(w http.ResponseWriter, format imaging.Format, opts ...imaging.EncodeOption) error {
	w.Header().Set("Content-Type", contentTypes[format])
	return imaging.Encode(w, i.Image, format, opts...)
}

// ContentType returns the media type for an imaging format
func ContentType(format imaging.Format) string {
	return contentTypes[format]
}

var contentTypes = map[imaging.Format]string{
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.JPEG: "image/jpeg",
	imaging.BMP:  "image/bmp",
	imaging.TIFF: "image/tiff",
}
