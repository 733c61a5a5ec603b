package models

import (
	"time"
)

// Blob is a single value of the SQL key-value table used as a blob backend
type Blob struct {
	Store       string    `gorm:"primaryKey;size:128" json:"store"`
	Key         string    `gorm:"primaryKey;column:blob_key;size:255" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Blob model
func (Blob) TableName() string {
	return "blobs"
}
