package api_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mapsnap/mapsnap/internal/api"
	"github.com/mapsnap/mapsnap/internal/health"
	"github.com/mapsnap/mapsnap/internal/logger"
	"github.com/mapsnap/mapsnap/internal/staticmap"
	"github.com/mapsnap/mapsnap/internal/tracing/test"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newTestAPI builds a router backed by a stub upstream
func newTestAPI(t *testing.T, upstream http.HandlerFunc) http.Handler {
	t.Helper()

	log := logger.New(zap.FatalLevel)
	t.Cleanup(func() { log.Sync() })

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client := &staticmap.Client{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	probe, err := staticmap.New("0,0")
	if err != nil {
		t.Fatal(err)
	}
	probe.Size("100x100")

	checker := &health.Checker{
		Ctx:      ctx,
		Upstream: client,
		Probe:    probe,
		Log:      log,
	}
	checker.Run()

	a := &api.API{
		Upstream:       client,
		HealthChecker:  checker,
		Log:            log,
		Tracer:         test.Tracer(log),
		HandlerTimeout: 30 * time.Second,
	}

	return a.Router()
}

func servePNG(t *testing.T) http.HandlerFunc {
	data := encodePNG(t)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}
}

func TestMap(t *testing.T) {
	router := newTestAPI(t, servePNG(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/map?center=Prague", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("wrong status %d: %s", w.Code, w.Body.String())
	}

	if contentType := w.Header().Get("Content-Type"); contentType != "image/png" {
		t.Errorf("wrong content type %q", contentType)
	}

	if etag := w.Header().Get("ETag"); etag == "" || !strings.HasPrefix(etag, "\"") {
		t.Errorf("wrong etag %q", etag)
	}

	disposition := w.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, "inline; filename=") || !strings.Contains(disposition, ".png") {
		t.Errorf("wrong content disposition %q", disposition)
	}

	if !reflect.DeepEqual(w.Body.Bytes(), encodePNG(t)) {
		t.Error("body doesn't match the upstream image")
	}
}

func TestMapErrors(t *testing.T) {
	tests := []struct {
		Name             string
		URL              string
		ExpectedStatus   int
		ExpectedResponse string
	}{
		{"missing center", "/map", http.StatusBadRequest, "Missing center parameter\n"},
		{"invalid zoom", "/map?center=Prague&zoom=abc", http.StatusBadRequest, "Invalid zoom\n"},
		{"invalid sensor", "/map?center=Prague&sensor=yes", http.StatusBadRequest, "Invalid sensor\n"},
		{"unknown route", "/does-not-exist", http.StatusNotFound, "page not found\n"},
	}

	router := newTestAPI(t, servePNG(t))

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", test.URL, nil))

			if w.Code != test.ExpectedStatus {
				t.Errorf("wrong status %d", w.Code)
			}

			if w.Body.String() != test.ExpectedResponse {
				t.Errorf("wrong response %q", w.Body.String())
			}
		})
	}
}

func TestMapErrorAsJSON(t *testing.T) {
	router := newTestAPI(t, servePNG(t))

	r := httptest.NewRequest("GET", "/map", nil)
	r.Header.Set("Accept", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong status %d", w.Code)
	}

	if w.Body.String() != "{\"error\":\"Missing center parameter\"}\n" {
		t.Errorf("wrong response %q", w.Body.String())
	}
}

func TestMapUpstreamFailure(t *testing.T) {
	router := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/map?center=Prague", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("wrong status %d", w.Code)
	}

	if w.Body.String() != "upstream fetch failed\n" {
		t.Errorf("wrong response %q", w.Body.String())
	}
}

func TestURL(t *testing.T) {
	router := newTestAPI(t, servePNG(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/url?center=Prague&markers=A&markers=B", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("wrong status %d: %s", w.Code, w.Body.String())
	}

	if contentType := w.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("wrong content type %q", contentType)
	}

	want := "{\"url\":\"" + staticmap.Endpoint + "?center=Prague\\u0026zoom=10\\u0026size=500x400\\u0026format=png\\u0026maptype=roadmap\\u0026markers=A\\u0026markers=B\\u0026sensor=false\"}\n"
	if w.Body.String() != want {
		t.Errorf("wrong response %q, want %q", w.Body.String(), want)
	}
}

func TestHealth(t *testing.T) {
	router := newTestAPI(t, servePNG(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("wrong status %d: %s", w.Code, w.Body.String())
	}

	if w.Body.String() != "{\"healthy\":true,\"upstream\":\"healthy\"}\n" {
		t.Errorf("wrong response %q", w.Body.String())
	}
}
