package api

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"stegguard/internal/bitplane"
	"stegguard/internal/carrier"
	"stegguard/internal/database"
	"stegguard/internal/frame"
	"stegguard/internal/models"
	"stegguard/internal/stego"
	"stegguard/internal/watermarking"
)

// History is the subset of the history store the handlers need.
type History interface {
	InsertEmbed(ctx context.Context, rec *models.EmbedRecord) error
	GetEmbed(ctx context.Context, id uuid.UUID) (*models.EmbedRecord, error)
	FindByStegoMD5(ctx context.Context, md5 string) ([]models.EmbedRecord, error)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	History        History // nil disables embed history
	MaxUploadBytes int64
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(history History, maxUploadBytes int64) *Handlers {
	return &Handlers{History: history, MaxUploadBytes: maxUploadBytes}
}

// --- Helper Functions ---

// respondWithJSON is a helper to send a JSON response.
func (h *Handlers) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

// respondWithError is a helper to send a JSON error message.
func (h *Handlers) respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("Error: %s", message)
	h.respondWithJSON(w, code, models.ErrorResponse{Error: message})
}

// statusFor maps codec failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, bitplane.ErrInsufficientCapacity):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, carrier.ErrUnsupportedImageFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, frame.ErrTerminatorNotFound), errors.Is(err, stego.ErrIntegrityMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// uploadStatus is 413 when the body hit the upload limit, 400 otherwise.
func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// readFormFile reads one uploaded file from the multipart form.
func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("invalid %s file: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s file: %w", field, err)
	}
	return data, header.Filename, nil
}

// parseUpload bounds the request body, parses the multipart form and returns
// the uploaded image and the selected algorithm.
func (h *Handlers) parseUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, watermarking.Watermarker, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		return nil, "", nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	media, filename, err := readFormFile(r, "media")
	if err != nil {
		return nil, "", nil, err
	}

	var config models.AlgorithmConfig
	if configStr := r.FormValue("config"); configStr != "" {
		if err := json.Unmarshal([]byte(configStr), &config); err != nil {
			return nil, "", nil, fmt.Errorf("invalid config JSON: %w", err)
		}
	}

	watermarker, err := watermarking.GetWatermarker(config.Algorithm)
	if err != nil {
		return nil, "", nil, fmt.Errorf("unknown watermark algorithm: %w", err)
	}
	return media, filename, watermarker, nil
}

// HandleEmbed hides the uploaded payload in the uploaded carrier and returns the stego image.
func (h *Handlers) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	media, filename, watermarker, err := h.parseUpload(w, r)
	if err != nil {
		h.respondWithError(w, uploadStatus(err), err.Error())
		return
	}

	payload, _, err := readFormFile(r, "payload")
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("[INFO] Embedding %d bytes into %s with %s", len(payload), filename, watermarker.Name())
	result, err := watermarker.Embed(bytes.NewReader(media), payload)
	if err != nil {
		h.respondWithError(w, statusFor(err), "Failed to embed payload: "+err.Error())
		return
	}

	stegoBytes, err := io.ReadAll(result)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to read embedded image: "+err.Error())
		return
	}

	record := &models.EmbedRecord{
		ID:          uuid.New(),
		Algorithm:   watermarker.Name(),
		Filename:    filepath.Base(filename),
		CarrierMD5:  md5Hex(media),
		StegoMD5:    md5Hex(stegoBytes),
		PayloadMD5:  md5Hex(payload),
		PayloadSize: len(payload),
		CreatedAt:   time.Now().UTC(),
	}

	// Register the embed with the history store
	if h.History != nil {
		if err := h.History.InsertEmbed(r.Context(), record); err != nil {
			h.respondWithError(w, http.StatusInternalServerError, "Failed to register embed: "+err.Error())
			return
		}
	}

	w.Header().Set("Content-Type", http.DetectContentType(stegoBytes))
	w.Header().Set("Content-Disposition", `attachment; filename="stego_`+filepath.Base(filename)+`"`)
	w.Header().Set("X-Embed-ID", record.ID.String())
	w.Header().Set("X-Payload-MD5", record.PayloadMD5)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(stegoBytes)
}

// HandleExtract recovers the payload hidden in the uploaded image.
func (h *Handlers) HandleExtract(w http.ResponseWriter, r *http.Request) {
	media, _, watermarker, err := h.parseUpload(w, r)
	if err != nil {
		h.respondWithError(w, uploadStatus(err), err.Error())
		return
	}

	payload, err := watermarker.Extract(bytes.NewReader(media))
	if err != nil {
		h.respondWithError(w, statusFor(err), "Failed to extract payload: "+err.Error())
		return
	}

	if h.History != nil {
		records, err := h.History.FindByStegoMD5(r.Context(), md5Hex(media))
		if err != nil {
			log.Printf("[ERROR] history lookup failed: %v", err)
		} else if len(records) > 0 {
			log.Printf("[INFO] Image matches embed record %s", records[0].ID)
			w.Header().Set("X-Embed-ID", records[0].ID.String())
		}
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="extracted.bin"`)
	w.Header().Set("X-Payload-MD5", md5Hex(payload))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// HandleCapacity reports how much data the uploaded image can hold.
func (h *Handlers) HandleCapacity(w http.ResponseWriter, r *http.Request) {
	media, _, _, err := h.parseUpload(w, r)
	if err != nil {
		h.respondWithError(w, uploadStatus(err), err.Error())
		return
	}

	img, err := carrier.Decode(bytes.NewReader(media))
	if err != nil {
		h.respondWithError(w, statusFor(err), err.Error())
		return
	}

	capacity := img.Raster.Capacity()
	h.respondWithJSON(w, http.StatusOK, models.CapacityResponse{
		Format:          img.Format,
		Width:           img.Raster.Width,
		Height:          img.Raster.Height,
		Channels:        img.Raster.Channels,
		CapacityBits:    capacity,
		MaxPayloadBytes: stego.MaxPayload(capacity),
	})
}

// HandleGetHistory returns a single embed record.
func (h *Handlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		h.respondWithError(w, http.StatusNotFound, "Embed history is disabled")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["uuid"])
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid embed UUID format")
		return
	}

	record, err := h.History.GetEmbed(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Embed record not found")
			return
		}
		h.respondWithError(w, http.StatusInternalServerError, "Database error while retrieving embed record")
		return
	}

	h.respondWithJSON(w, http.StatusOK, record)
}

// HandleAlgorithmListing returns a list of supported watermarking algorithms.
func (h *Handlers) HandleAlgorithmListing(w http.ResponseWriter, r *http.Request) {
	algorithms := watermarking.ListSupportedAlgorithms()
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"algorithms": algorithms})
}
