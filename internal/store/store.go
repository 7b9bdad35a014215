package store

import (
	"errors"

	"github.com/tombowditch/ptpb/internal/paste"
)

// ErrNotFound is returned when a paste doesn't exist or has expired.
var ErrNotFound = errors.New("paste not found")

// Store defines the interface for paste storage operations.
type Store interface {
	// Get retrieves a paste by short id, long id or ~label.
	Get(id string) (*paste.Paste, error)
	// Lookup retrieves a paste by uuid.
	Lookup(uuid string) (*paste.Paste, error)
	// Create stores a new paste.
	// Returns false if one of its ids is already taken (collision).
	Create(p *paste.Paste) (bool, error)
	// Update replaces a stored paste's body and settings.
	Update(p *paste.Paste) error
	// Delete removes a paste by uuid.
	Delete(uuid string) error
}
