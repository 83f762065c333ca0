package models

import (
	"time"

	"github.com/google/uuid"
)

// -- Algorithm listing --
type Algorithm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// --- Response Structs ---
type CapacityResponse struct {
	Format          string `json:"format"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Channels        int    `json:"channels"`
	CapacityBits    int    `json:"capacity_bits"`
	MaxPayloadBytes int    `json:"max_payload_bytes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// EmbedRecord is one row of the embed history.
type EmbedRecord struct {
	ID          uuid.UUID `json:"id"`
	Algorithm   string    `json:"algorithm"`
	Filename    string    `json:"filename"`
	CarrierMD5  string    `json:"carrier_md5"`
	StegoMD5    string    `json:"stego_md5"`
	PayloadMD5  string    `json:"payload_md5"`
	PayloadSize int       `json:"payload_size"`
	CreatedAt   time.Time `json:"created_at"`
}

// AlgorithmConfig selects the watermarking algorithm for a request.
type AlgorithmConfig struct {
	Algorithm string `json:"algorithm"`
}
