package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is the base model for all persisted entities
type BaseModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook to generate UUID if not set
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Item provenance values
const (
	SourceManual  = "manual"
	SourceAI      = "ai"
	SourceBarcode = "barcode"
)

// Item represents a single shoe entry in a user's collection
type Item struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Name        string    `gorm:"not null" json:"name" validate:"required"`
	Brand       string    `gorm:"not null" json:"brand"`
	Silhouette  string    `json:"silhouette,omitempty"`
	StyleID     string    `json:"style_id,omitempty"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	Quantity    int       `gorm:"default:1" json:"quantity"`
	Value       float64   `gorm:"default:0" json:"value"`
	RetailValue float64   `gorm:"default:0" json:"retail_value"`
	ReleaseDate string    `json:"release_date,omitempty"` // YYYY-MM-DD or empty
	Condition   string    `json:"condition,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ImageKey    string    `json:"image_key,omitempty"` // storage key when the image was rehosted by us
	Barcode     string    `json:"barcode,omitempty"`
	Source      string    `gorm:"default:'manual'" json:"source"`
}

// User represents an account in the system
type User struct {
	BaseModel
	Email         string     `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Password      string     `gorm:"not null" json:"-"`
	Name          string     `json:"name"`
	PhotoURL      string     `json:"photo_url,omitempty"`
	ShoeSize      string     `json:"shoe_size,omitempty"` // profile default applied to AI analysis batches
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

// PaginationResult represents paginated results
type PaginationResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// GetAllModels returns all models for GORM AutoMigrate
func GetAllModels() []interface{} {
	return []interface{}{
		&User{},
		&Item{},
	}
}
