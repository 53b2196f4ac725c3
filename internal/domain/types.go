package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedDate  time.Time `json:"created_date"`
}

type Property struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PropertyType string    `json:"property_type"`
	Price        float64   `json:"price"`
	Location     string    `json:"location"`
	Bedrooms     int64     `json:"bedrooms"`
	Bathrooms    int64     `json:"bathrooms"`
	Area         float64   `json:"area"`
	Status       string    `json:"status"`
	OwnerName    string    `json:"owner_name"`
	OwnerContact string    `json:"owner_contact"`
	CreatedDate  time.Time `json:"created_date"`
	UpdatedDate  time.Time `json:"updated_date"`
}

// Document is a file attachment owned by a single property. Filename is the
// system-generated stored name; OriginalFilename is kept for display only.
type Document struct {
	ID               int64     `json:"id"`
	PropertyID       int64     `json:"property_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	DocumentType     string    `json:"document_type"`
	UploadDate       time.Time `json:"upload_date"`
}

// MapsLink is a named geographic reference for a property. Latitude and
// Longitude are either both set or both nil.
type MapsLink struct {
	ID             int64     `json:"id"`
	PropertyID     int64     `json:"property_id"`
	LinkTitle      string    `json:"link_title"`
	GoogleMapsLink string    `json:"google_maps_link"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	CreatedDate    time.Time `json:"created_date"`
}

// Session is a server-side login session identified by an opaque token.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
