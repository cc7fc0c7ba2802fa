// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"landpress/internal/middleware"
	"landpress/internal/models"
	"landpress/internal/storage"
	"landpress/internal/store"
)

const (
	// maxImageSize is the upload limit for image files (5 MB).
	maxImageSize = 5 << 20

	// maxDocumentSize is the upload limit for documents (10 MB).
	maxDocumentSize = 10 << 20

	// thumbMaxWidth is the generated thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps decoded image size to prevent memory bombs.
	maxImagePixels = 100_000_000
)

// allowedImageTypes are the image MIME types accepted for upload.
var allowedImageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// allowedDocumentTypes are the document MIME types accepted for upload.
var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
}

// thumbableTypes are image types that support thumbnail generation.
// GIF is excluded to preserve animation; SVG is vector.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Upload handles multipart media uploads.
type Upload struct {
	backend storage.Backend
	media   *store.MediaStore
}

// NewUpload creates a new Upload handler group.
func NewUpload(backend storage.Backend, media *store.MediaStore) *Upload {
	return &Upload{backend: backend, media: media}
}

// Handle accepts one multipart file under the "file" field, sniffs its
// real MIME type, enforces per-type size limits, stores it, generates a
// thumbnail for raster images, and records a media row. Nothing is
// written for rejected files.
func (h *Upload) Handle(w http.ResponseWriter, r *http.Request) {
	if h.backend == nil {
		respondError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize+4096)
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondInvalid(w, "no file provided")
		return
	}
	defer file.Close()

	// Detect content type by sniffing the first 512 bytes; the client's
	// declared type is not trusted.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		slog.Error("upload read failed", "error", err)
		respondInternal(w)
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])
	contentType = strings.Split(contentType, ";")[0]

	// SVG detection: DetectContentType reports XML or plain text for SVGs.
	if strings.HasSuffix(strings.ToLower(header.Filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		contentType = "image/svg+xml"
	}

	var limit int64
	switch {
	case allowedImageTypes[contentType]:
		limit = maxImageSize
	case allowedDocumentTypes[contentType]:
		limit = maxDocumentSize
	default:
		respondInvalid(w, fmt.Sprintf("file type %q is not allowed", contentType))
		return
	}
	if header.Size > limit {
		respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file too large, limit is %d MB", limit>>20))
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		slog.Error("upload seek failed", "error", err)
		respondInternal(w)
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		slog.Error("upload read failed", "error", err)
		respondInternal(w)
		return
	}

	now := time.Now()
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	fileID := uuid.New().String()
	key := fmt.Sprintf("uploads/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	ctx := r.Context()
	if err := h.backend.Upload(ctx, key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		slog.Error("upload store failed", "error", err, "key", key)
		respondInternal(w)
		return
	}

	var thumbKey *string
	if thumbableTypes[contentType] {
		thumbData, err := generateThumbnail(bytes.NewReader(fileBytes), thumbMaxWidth)
		if err != nil {
			slog.Warn("thumbnail generation failed", "error", err, "key", key)
		} else if thumbData != nil {
			tk := fmt.Sprintf("uploads/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
			if err := h.backend.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumbData), int64(len(thumbData))); err != nil {
				slog.Warn("thumbnail store failed", "error", err, "key", tk)
			} else {
				thumbKey = &tk
			}
		}
	}

	media := &models.Media{
		Filename:    header.Filename,
		ContentType: contentType,
		SizeBytes:   int64(len(fileBytes)),
		StorageKey:  key,
		ThumbKey:    thumbKey,
		URL:         h.backend.FileURL(key),
	}
	if sess != nil {
		media.UploadedBy = &sess.UserID
	}

	created, err := h.media.Create(media)
	if err != nil {
		slog.Error("media insert failed", "error", err, "key", key)
		respondInternal(w)
		return
	}

	resp := map[string]any{
		"id":          created.ID,
		"url":         created.URL,
		"filename":    created.Filename,
		"size":        created.SizeBytes,
		"contentType": created.ContentType,
	}
	if thumbKey != nil {
		resp["thumbnailUrl"] = h.backend.FileURL(*thumbKey)
	}
	respond(w, http.StatusCreated, resp)
}

// List returns recorded media, newest first.
func (h *Upload) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.media.List(100, 0)
	if err != nil {
		slog.Error("media list failed", "error", err)
		respondInternal(w)
		return
	}
	if items == nil {
		items = []models.Media{}
	}
	respond(w, http.StatusOK, items)
}

// Delete removes a media record and its stored objects.
func (h *Upload) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w)
		return
	}

	media, err := h.media.FindByID(id)
	if err != nil {
		slog.Error("media lookup failed", "error", err)
		respondInternal(w)
		return
	}
	if media == nil {
		respondNotFound(w)
		return
	}

	if err := h.media.Delete(id); err != nil {
		slog.Error("media delete failed", "error", err)
		respondInternal(w)
		return
	}

	// Object cleanup is best-effort; the row is already gone.
	ctx := r.Context()
	if h.backend != nil {
		if err := h.backend.Delete(ctx, media.StorageKey); err != nil {
			slog.Warn("stored object delete failed", "error", err, "key", media.StorageKey)
		}
		if media.ThumbKey != nil {
			if err := h.backend.Delete(ctx, *media.ThumbKey); err != nil {
				slog.Warn("thumbnail delete failed", "error", err, "key", *media.ThumbKey)
			}
		}
	}

	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// generateThumbnail creates a JPEG thumbnail constrained to maxWidth while
// preserving aspect ratio. Returns nil if the image is already small enough.
func generateThumbnail(src io.ReadSeeker, maxWidth int) ([]byte, error) {
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d", imgCfg.Width, imgCfg.Height)
	}
	if imgCfg.Width <= maxWidth {
		return nil, nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, int(float64(bounds.Dy())*ratio)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
