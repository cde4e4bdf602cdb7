package handlers

import (
	"errors"
	"net/http"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/faces"
	"github.com/kozaktomas/photo-faces/internal/gallery"
	"github.com/kozaktomas/photo-faces/internal/imaging"
	"github.com/kozaktomas/photo-faces/internal/logger"
)

// ImagesHandler serves the grid and detail views.
type ImagesHandler struct {
	repo    *faces.Repository
	listing *faces.Listing
	log     *logger.Logger
}

// NewImagesHandler creates a new images handler.
func NewImagesHandler(repo *faces.Repository, listing *faces.Listing, log *logger.Logger) *ImagesHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ImagesHandler{repo: repo, listing: listing, log: log}
}

// FaceResponse is one face in API responses.
type FaceResponse struct {
	BoundingBox database.Rect `json:"box"`
	Name        *string       `json:"name"`
}

// ImageResponse is one image in API responses.
type ImageResponse struct {
	URI       string         `json:"uri"`
	Timestamp int64          `json:"timestamp"`
	FaceCount int            `json:"face_count"`
	Faces     []FaceResponse `json:"faces"`
}

func newImageResponse(uri string, timestamp int64, entries []database.FaceEntry) ImageResponse {
	resp := ImageResponse{
		URI:       uri,
		Timestamp: timestamp,
		FaceCount: len(entries),
		Faces:     make([]FaceResponse, len(entries)),
	}
	for i, f := range entries {
		resp.Faces[i] = FaceResponse{BoundingBox: f.BoundingBox, Name: f.Name}
	}
	return resp
}

func (h *ImagesHandler) snapshot() []ImageResponse {
	items := h.listing.Snapshot()
	out := make([]ImageResponse, len(items))
	for i, img := range items {
		out[i] = newImageResponse(img.URI, img.Timestamp, img.Faces)
	}
	return out
}

// List returns the folded image list.
func (h *ImagesHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshot())
}

// Events streams the current list followed by one "image" event per update.
// A client that fell behind receives a fresh "snapshot" instead.
func (h *ImagesHandler) Events(w http.ResponseWriter, r *http.Request) {
	updates := h.listing.Subscribe()
	defer h.listing.Unsubscribe(updates)

	flusher, ok := startSSE(w)
	if !ok {
		return
	}
	sendSSEEvent(w, flusher, "snapshot", h.snapshot())

	for {
		select {
		case <-r.Context().Done():
			return
		case img, ok := <-updates:
			if !ok {
				return
			}
			if h.listing.Missed(updates) {
				sendSSEEvent(w, flusher, "snapshot", h.snapshot())
				continue
			}
			sendSSEEvent(w, flusher, "image", newImageResponse(img.URI, img.Timestamp, img.Faces))
		}
	}
}

// Get returns the stored faces of one image.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	uri, err := uriParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.repo.Record(r.Context(), uri)
	if errors.Is(err, faces.ErrImageNotFound) {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}
	if err != nil {
		h.log.Error("failed to load image", "uri", sanitizeForLog(uri), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load image")
		return
	}
	respondJSON(w, http.StatusOK, newImageResponse(record.ImageURI, record.Timestamp, record.Faces))
}

// Render returns the image with face rectangles as JPEG.
func (h *ImagesHandler) Render(w http.ResponseWriter, r *http.Request) {
	uri, err := uriParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	img := h.repo.GetProcessedImage(r.Context(), uri)
	if img == nil || img.Image == nil {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}

	data, err := imaging.EncodeJPEG(img.Image, constants.JPEGQuality)
	if err != nil {
		h.log.Error("failed to encode image", "uri", sanitizeForLog(uri), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to encode image")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// UpdateFaceRequest renames the faces of an image matching a bounding box.
type UpdateFaceRequest struct {
	URI  string        `json:"uri"`
	Box  database.Rect `json:"box"`
	Name string        `json:"name"`
}

// UpdateFace handles the detail screen's save action.
func (h *ImagesHandler) UpdateFace(w http.ResponseWriter, r *http.Request) {
	var req UpdateFaceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.URI == "" {
		respondError(w, http.StatusBadRequest, "uri is required")
		return
	}
	uri, err := gallery.ResolveURI(req.URI)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.repo.SaveName(r.Context(), uri, req.Box, req.Name)
	switch {
	case errors.Is(err, faces.ErrImageNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"result": string(faces.SaveFailed), "error": "image not found"})
	case err != nil:
		respondJSON(w, http.StatusInternalServerError, map[string]string{"result": string(faces.SaveFailed), "error": err.Error()})
	default:
		respondJSON(w, http.StatusOK, map[string]string{"result": string(result)})
	}
}

// Suggestions proposes names for the unnamed faces of one image.
func (h *ImagesHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	uri, err := uriParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestions, err := h.repo.SuggestNames(r.Context(), uri)
	if errors.Is(err, faces.ErrImageNotFound) {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}
	if err != nil {
		h.log.Error("failed to suggest names", "uri", sanitizeForLog(uri), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to suggest names")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// Cleanup removes records of photos that left the gallery.
func (h *ImagesHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	deleted := h.repo.CleanupOrphanedImages(r.Context())
	respondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
