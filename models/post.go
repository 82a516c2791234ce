package models

import (
	"time"

	"github.com/lib/pq"
)

// Post is a single catalogued collectible: two card photos stored on the
// media host plus the metadata describing the car itself. The image URL and
// media id of each slot are set together or not at all.
type Post struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title             string         `gorm:"size:255"`
	FrontImage        string         `gorm:"size:512;not null"`
	BackImage         string         `gorm:"size:512;not null"`
	FrontImageMediaID string         `gorm:"size:255;not null"`
	BackImageMediaID  string         `gorm:"size:255;not null"`
	Caption           string         `gorm:"size:2048"`
	Tags              pq.StringArray `gorm:"type:text[]"`
	Likes             int            `gorm:"default:0;not null"`
	UserID            uint           `gorm:"index;not null"`
	User              User           `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	// Extended catalog fields (sheet import + OCR inference).
	WheelVariations pq.StringArray `gorm:"type:text[]"`
	ToyNumber       string         `gorm:"size:64;index"`
	BoxNumber       string         `gorm:"size:64"`
	Year            int
	Series          string `gorm:"size:255"`
	Condition       string `gorm:"size:64"`
	IsSold          bool   `gorm:"default:false"`
}
