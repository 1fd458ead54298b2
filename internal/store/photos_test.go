package store

import (
	"context"
	"errors"
	"testing"

	"github.com/evanmh/stocktrack/internal/db"
)

func TestAddAndGetPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateStock(ctx, database, testRecord("JA000001")); err != nil {
		t.Fatalf("CreateStock: %v", err)
	}

	content := []byte("full image bytes")
	thumb := []byte("thumb bytes")
	photo, err := AddPhoto(ctx, database, "JA000001", content, thumb, "image/jpeg")
	if err != nil {
		t.Fatalf("AddPhoto: %v", err)
	}
	if photo.ID == "" {
		t.Error("expected non-empty photo ID")
	}

	meta, err := GetPhotoMeta(ctx, database, photo.ID)
	if err != nil {
		t.Fatalf("GetPhotoMeta: %v", err)
	}
	if meta.JAID != "JA000001" || meta.MIME != "image/jpeg" {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	data, mime, err := GetPhotoContent(ctx, database, photo.ID, false)
	if err != nil {
		t.Fatalf("GetPhotoContent: %v", err)
	}
	if string(data) != "full image bytes" || mime != "image/jpeg" {
		t.Errorf("unexpected content: %q %q", data, mime)
	}

	data, _, err = GetPhotoContent(ctx, database, photo.ID, true)
	if err != nil {
		t.Fatalf("GetPhotoContent thumb: %v", err)
	}
	if string(data) != "thumb bytes" {
		t.Errorf("unexpected thumbnail: %q", data)
	}
}

func TestListPhotos(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateStock(ctx, database, testRecord("JA000001")); err != nil {
		t.Fatalf("CreateStock: %v", err)
	}

	for range 3 {
		if _, err := AddPhoto(ctx, database, "JA000001", []byte("img"), []byte("th"), "image/png"); err != nil {
			t.Fatalf("AddPhoto: %v", err)
		}
	}

	photos, err := ListPhotos(ctx, database, "JA000001")
	if err != nil {
		t.Fatalf("ListPhotos: %v", err)
	}
	if len(photos) != 3 {
		t.Errorf("expected 3 photos, got %d", len(photos))
	}
}

func TestDeletePhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateStock(ctx, database, testRecord("JA000001")); err != nil {
		t.Fatalf("CreateStock: %v", err)
	}
	photo, err := AddPhoto(ctx, database, "JA000001", []byte("img"), []byte("th"), "image/png")
	if err != nil {
		t.Fatalf("AddPhoto: %v", err)
	}

	if err := DeletePhoto(ctx, database, photo.ID); err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
	if _, err := GetPhotoMeta(ctx, database, photo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := DeletePhoto(ctx, database, photo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}
