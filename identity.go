package codeboard

import "github.com/google/uuid"

// GlobalLayerID is the fixed id of the always-resident global layer.
const GlobalLayerID = "global"

// DefaultLayerID is the id of the layer an Engine pushes at startup.
const DefaultLayerID = "game"

// NewID returns a fresh random identifier. Tasks, entities and layers get one
// at construction unless the caller supplies its own.
func NewID() string {
	return uuid.NewString()
}

func idOr(id string) string {
	if id != "" {
		return id
	}
	return NewID()
}
