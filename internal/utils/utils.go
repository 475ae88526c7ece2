package utils

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/scythe504/wordsearch-backend/internal"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateGrid returns internal.GridSize independent uniform draws from A-Z,
// in reading order.
func GenerateGrid() []string {
	grid := make([]string, internal.GridSize)
	for i := range grid {
		grid[i] = string(alphabet[rand.IntN(len(alphabet))])
	}
	return grid
}

// GenerateID returns an opaque connection identifier.
func GenerateID() string {
	return uuid.NewString()
}
