package model

import (
	"time"

	"github.com/google/uuid"
)

// WeightEntry is one logged body weight. Weight is always stored in kg.
type WeightEntry struct {
	ID         uuid.UUID `json:"id"`
	MeasuredAt time.Time `json:"measured_at"`
	WeightKg   float64   `json:"weight_kg"`
	Note       string    `json:"note,omitempty"`
}
