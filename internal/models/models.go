package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Track is a catalog track normalized from a search result.
//
// Artist is the first credited artist, or empty when none is listed.
type Track struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	URI    string `json:"uri"`
}

// Same reports whether t and other are the same catalog track. Tracks are compared by ID only.
func (t Track) Same(other Track) bool {
	return t.ID == other.ID
}

func (t Track) String() string {
	switch {
	case t.Artist == "" && t.Album == "":
		return t.Name
	case t.Album == "":
		return fmt.Sprintf("%s - %s", t.Name, t.Artist)
	default:
		return fmt.Sprintf("%s - %s (%s)", t.Name, t.Artist, t.Album)
	}
}
