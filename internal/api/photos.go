package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/evanmh/stocktrack/internal/imaging"
	"github.com/evanmh/stocktrack/internal/model"
	"github.com/evanmh/stocktrack/internal/store"
)

// PhotosHandler handles item photo endpoints.
type PhotosHandler struct {
	DB *sql.DB
}

// Upload handles POST /api/stock/{ja_id}/photos.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	jaID := r.PathValue("ja_id")

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	processed, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	photo, err := store.AddPhoto(r.Context(), h.DB, jaID, processed.Data, processed.Thumbnail, processed.MIME)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("photo uploaded", "ja_id", jaID, "photo", photo.ID)
	jsonResponse(w, http.StatusCreated, photo)
}

// List handles GET /api/stock/{ja_id}/photos.
func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := store.ListPhotos(r.Context(), h.DB, r.PathValue("ja_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	jsonResponse(w, http.StatusOK, photos)
}

// Get handles GET /api/photos/{id} and GET /api/photos/{id}/thumb.
func (h *PhotosHandler) Get(thumb bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, mime, err := store.GetPhotoContent(r.Context(), h.DB, r.PathValue("id"), thumb)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		w.Header().Set("Content-Type", mime)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(data)
	}
}

// Delete handles DELETE /api/photos/{id}.
func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.DeletePhoto(r.Context(), h.DB, id); err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("photo deleted", "photo", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo deleted"})
}
