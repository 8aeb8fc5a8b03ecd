package staticmap_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/mapsnap/mapsnap/internal/staticmap"
)

func newUpstream(t *testing.T, handler http.HandlerFunc) *staticmap.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &staticmap.Client{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	}
}

func TestFetch(t *testing.T) {
	data := encodePNG(t)

	var query string
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	})

	req, _ := staticmap.New("Prague")
	req.Marker("A").Marker("B")

	body, contentType, err := client.Fetch(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if contentType != "image/png" {
		t.Errorf("wrong content type %q", contentType)
	}

	if !reflect.DeepEqual(body, data) {
		t.Error("body doesn't match the served image")
	}

	// The upstream must see the repeated markers as separate parameters
	if !strings.Contains(query, "markers=A&markers=B") {
		t.Errorf("wrong upstream query %q", query)
	}
}

func TestFetchMissingLocation(t *testing.T) {
	called := false
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req, _ := staticmap.New()

	_, _, err := client.Fetch(context.Background(), req)
	if !errors.Is(err, staticmap.ErrMissingLocation) {
		t.Errorf("wrong error %v", err)
	}

	if called {
		t.Error("no request should be made without a location")
	}
}

func TestFetchUpstreamError(t *testing.T) {
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	req, _ := staticmap.New("Prague")

	_, _, err := client.Fetch(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("wrong error %v", err)
	}
}

func TestImage(t *testing.T) {
	t.Run("decodes a png response", func(t *testing.T) {
		client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write(encodePNG(t))
		})

		req, _ := staticmap.New("Prague")

		img, err := client.Image(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}

		if img.ContentType != "image/png" {
			t.Errorf("wrong content type %q", img.ContentType)
		}
	})

	t.Run("fails on an unsupported format", func(t *testing.T) {
		client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/bmp")
			w.Write([]byte{0x42, 0x4d})
		})

		req, _ := staticmap.New("Prague")

		_, err := client.Image(context.Background(), req)
		if !errors.Is(err, staticmap.ErrUnsupportedFormat) {
			t.Errorf("wrong error %v", err)
		}
	})
}
