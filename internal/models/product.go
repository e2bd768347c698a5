package models

// Product is a catalog item.
type Product struct {
	Base
	Name        string  `gorm:"not null" json:"name"`
	Brand       string  `json:"brand"`
	Description string  `json:"description"`
	Price       int64   `gorm:"not null;default:0" json:"price"`
	Stock       int     `gorm:"not null;default:0" json:"stock"`
	CategoryID  *string `gorm:"type:uuid;index" json:"category_id,omitempty"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
