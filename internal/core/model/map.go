package model

import (
	"fmt"
	"time"
)

// Map is the persisted aggregate: a named, ordered collection of places.
// Insertion order is first-seen order.
type Map struct {
	Name      string    `json:"name"`
	Places    []Place   `json:"places"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMap creates an empty map with both timestamps set to now.
func NewMap(name string) Map {
	now := time.Now().UTC()
	return Map{
		Name:      name,
		Places:    []Place{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FindPlace returns the index of the place with the given ID, or -1.
func (m Map) FindPlace(id string) int {
	for i := range m.Places {
		if m.Places[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the map.
func (m Map) Clone() Map {
	c := m
	c.Places = make([]Place, len(m.Places))
	for i := range m.Places {
		c.Places[i] = m.Places[i].Clone()
	}
	return c
}

// Validate checks the id-uniqueness invariant.
func (m Map) Validate() error {
	seen := make(map[string]string, len(m.Places))
	for _, p := range m.Places {
		if other, ok := seen[p.ID]; ok {
			return fmt.Errorf("duplicate place id %s (%q and %q)", p.ID, other, p.Name)
		}
		seen[p.ID] = p.Name
	}
	return nil
}
