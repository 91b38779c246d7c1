// Package domain contains the core business entities for the Muza music catalog.
package domain

import "time"

// Artist represents a performing or composing artist in the catalog.
type Artist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photo_url,omitzero"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
