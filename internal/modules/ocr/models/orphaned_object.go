package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrphanedObject is a stored object whose cleanup failed and is retried later
type OrphanedObject struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Path      string    `gorm:"type:text;not null;uniqueIndex" json:"path"`
	Reason    string    `gorm:"type:varchar(50);not null" json:"reason"` // replaced, deleted, pipeline_failed, ...
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`
	LastError string    `gorm:"type:text" json:"last_error,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (OrphanedObject) TableName() string {
	return "orphaned_objects"
}

// BeforeCreate sets UUID before creating
func (o *OrphanedObject) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Orphan reasons
const (
	OrphanReasonReplaced       = "replaced"
	OrphanReasonDeleted        = "deleted"
	OrphanReasonPipelineFailed = "pipeline_failed"
	OrphanReasonUpdateFailed   = "update_failed"
	OrphanReasonNoURL          = "no_url"
	OrphanReasonPersistFailed  = "persist_failed"
)
