package models

import (
	"time"

	"gorm.io/datatypes"
)

// QueryLog is an append-only record of a completed chatbot request, read by
// the admin dashboard. The core never mutates entries after creation.
type QueryLog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ReferenceID   string         `gorm:"size:64;uniqueIndex" json:"reference_id"`
	CorrelationID string         `gorm:"size:64;index" json:"correlation_id"`
	Role          string         `gorm:"size:16;index" json:"role"`
	Intent        string         `gorm:"size:32;index" json:"intent"`
	Question      string         `gorm:"type:text" json:"question"`
	Answer        string         `gorm:"type:text" json:"answer"`
	Denied        bool           `json:"denied"`
	LatencyMs     float64        `json:"latency_ms"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
