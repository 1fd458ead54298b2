package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/evanmh/stocktrack/internal/model"
)

// AddPhoto attaches a processed photo to a logical item by JA ID. Photos
// belong to the item, not to one record version, so they stay visible after
// the item is shortened.
func AddPhoto(ctx context.Context, db *sql.DB, jaID string, content, thumbnail []byte, mime string) (*model.Photo, error) {
	if !model.ValidJAID(jaID) {
		return nil, &InvalidInputError{Field: "ja_id", Reason: fmt.Sprintf("%q is not a valid JA ID", jaID)}
	}

	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO photos (id, ja_id, content, thumbnail, mime) VALUES (?, ?, ?, ?, ?)`,
		id, jaID, content, thumbnail, mime,
	)
	if err != nil {
		return nil, fmt.Errorf("adding photo: %w", err)
	}

	return GetPhotoMeta(ctx, db, id)
}

// GetPhotoMeta returns a photo's metadata without its blob content.
func GetPhotoMeta(ctx context.Context, db *sql.DB, id string) (*model.Photo, error) {
	p := &model.Photo{}
	err := db.QueryRowContext(ctx,
		`SELECT id, ja_id, mime, created_at FROM photos WHERE id = ?`, id,
	).Scan(&p.ID, &p.JAID, &p.MIME, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("photo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting photo: %w", err)
	}
	return p, nil
}

// GetPhotoContent returns a photo's image bytes. With thumb set, the
// thumbnail is returned instead of the full image.
func GetPhotoContent(ctx context.Context, db *sql.DB, id string, thumb bool) ([]byte, string, error) {
	column := "content"
	if thumb {
		column = "thumbnail"
	}

	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT `+column+`, mime FROM photos WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("photo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting photo content: %w", err)
	}
	return data, mime, nil
}

// ListPhotos returns metadata for all photos of an item, newest first.
func ListPhotos(ctx context.Context, db *sql.DB, jaID string) ([]model.Photo, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, ja_id, mime, created_at FROM photos
		 WHERE ja_id = ? ORDER BY created_at DESC, id`, jaID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ID, &p.JAID, &p.MIME, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// DeletePhoto removes a photo.
func DeletePhoto(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("photo %s: %w", id, ErrNotFound)
	}
	return nil
}
