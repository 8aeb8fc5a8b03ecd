package staticmap_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/mapsnap/mapsnap/internal/staticmap"
)

func testImage(t *testing.T) image.Image {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	return img
}

func encodePNG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(t)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := gif.Encode(&buf, testImage(t), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(t), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	tests := []struct {
		Name        string
		Data        []byte
		ContentType string
		Err         error
	}{
		{"png", encodePNG(t), "image/png", nil},
		{"gif", encodeGIF(t), "image/gif", nil},
		{"jpeg", encodeJPEG(t), "image/jpeg", nil},
		{"content type with parameters", encodePNG(t), "image/png; charset=binary", nil},
		{"sniffed content type", encodePNG(t), "", nil},
		{"unsupported image format", encodePNG(t), "image/bmp", staticmap.ErrUnsupportedFormat},
		{"not an image", []byte("<html>error</html>"), "text/html", staticmap.ErrNotImage},
		{"mislabeled payload", encodeJPEG(t), "image/png", staticmap.ErrDecode},
		{"truncated payload", encodePNG(t)[:8], "image/png", staticmap.ErrDecode},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			img, err := staticmap.Decode(test.Data, test.ContentType)

			if test.Err != nil {
				if !errors.Is(err, test.Err) {
					t.Fatalf("wrong error %v", err)
				}
				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
				t.Errorf("wrong bounds %v", img.Bounds())
			}
		})
	}
}

func TestDecodeErrorNamesFormat(t *testing.T) {
	_, err := staticmap.Decode(encodePNG(t), "image/bmp")
	if err == nil || !strings.Contains(err.Error(), "image/bmp") {
		t.Errorf("error does not name the format: %v", err)
	}
}

func TestSave(t *testing.T) {
	img, err := staticmap.Decode(encodePNG(t), "image/png")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "map.png")
	if err := img.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("saved file is not a png: %s", err)
	}
}

func TestEncode(t *testing.T) {
	img, err := staticmap.Decode(encodePNG(t), "image/png")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf, imaging.JPEG, imaging.JPEGQuality(50)); err != nil {
		t.Fatal(err)
	}

	if _, err := jpeg.Decode(bytes.NewReader(buf.Bytes())); err != nil {
		t.Errorf("encoded data is not a jpeg: %s", err)
	}
}

func TestSend(t *testing.T) {
	img, err := staticmap.Decode(encodeGIF(t), "image/gif")
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	if err := img.Send(w, imaging.GIF); err != nil {
		t.Fatal(err)
	}

	if contentType := w.Header().Get("Content-Type"); contentType != "image/gif" {
		t.Errorf("wrong content type %q", contentType)
	}

	if _, err := gif.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Errorf("response body is not a gif: %s", err)
	}
}
