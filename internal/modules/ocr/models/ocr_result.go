package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OCRResult is a persisted OCR outcome
type OCRResult struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FileName      string    `gorm:"type:text;not null" json:"file_name"`
	ExtractedText string    `gorm:"type:text;not null;default:''" json:"extracted_text"`

	// Media
	ImageURL *string `gorm:"type:text" json:"image_url"`

	ProcessedAt time.Time      `gorm:"type:timestamptz;not null;index" json:"processed_at"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty" swaggertype:"object"`
}

// TableName specifies the table name
func (OCRResult) TableName() string {
	return "ocr_results"
}

// BeforeCreate sets UUID before creating
func (r *OCRResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Valid reports whether a row read back from the store is well formed
func (r *OCRResult) Valid() bool {
	return r.ID != uuid.Nil && !r.ProcessedAt.IsZero()
}

// RecordMetadata is stored in the metadata column
type RecordMetadata struct {
	Languages []string `json:"languages"`
	Category  string   `json:"category"`
	Mode      int      `json:"mode"`
	WordCount int      `json:"word_count"`
	Engine    string   `json:"engine,omitempty"`
}

// UpdateOCRResultRequest carries the optional fields of an update. Nil means
// "not supplied".
type UpdateOCRResultRequest struct {
	ExtractedText *string `form:"extracted_text" json:"extracted_text,omitempty"`
	FileName      *string `form:"file_name" json:"file_name,omitempty"`
}
