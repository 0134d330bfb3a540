package models

import "time"

// Visibility controls whether non-owners may read a recipe.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the defined visibilities.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate:
		return true
	}
	return false
}

type Recipe struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	CuisineType string     `gorm:"size:100;not null" json:"cuisine_type"`
	Ingredients string     `gorm:"type:text;not null" json:"ingredients"`
	Steps       string     `gorm:"type:text;not null" json:"steps"`
	Picture     string     `gorm:"size:255" json:"picture,omitempty"`
	Visibility  Visibility `gorm:"size:20;not null;default:'private'" json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
