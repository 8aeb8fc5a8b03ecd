package file_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mapsnap/mapsnap/internal/storage/file"
)

func TestFile(t *testing.T) {
	dir := t.TempDir()

	provider, err := file.New(dir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("stores an image", func(t *testing.T) {
		data := []byte("image bytes")

		if err := provider.Put(context.Background(), "map.png", data, "image/png"); err != nil {
			t.Fatal(err)
		}

		stored, err := os.ReadFile(filepath.Join(dir, "map.png"))
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(stored, data) {
			t.Error("stored data doesn't match")
		}
	})

	t.Run("errors on a missing directory", func(t *testing.T) {
		if _, err := file.New(filepath.Join(dir, "does-not-exist")); err == nil {
			t.Error("expected an error")
		}
	})
}
