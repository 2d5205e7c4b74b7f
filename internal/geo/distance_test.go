package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm_ZeroDistance(t *testing.T) {
	d := HaversineKm(47.4979, 19.0402, 47.4979, 19.0402)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestHaversineKm_BudapestDebrecen(t *testing.T) {
	// Budapest to Debrecen is roughly 194 km as the crow flies
	d := HaversineKm(47.4979, 19.0402, 47.5316, 21.6273)
	assert.InDelta(t, 194, d, 3)
}

func TestIsWithinRadius(t *testing.T) {
	assert.True(t, IsWithinRadius(47.4979, 19.0402, 47.5070, 19.0450, DefaultRadiusKm))
	assert.False(t, IsWithinRadius(47.4979, 19.0402, 47.5316, 21.6273, DefaultRadiusKm))
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}
