package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters(t *testing.T) {
	origin, err := NewCoordinate(0, 0)
	require.NoError(t, err)
	east, err := NewCoordinate(0, 1)
	require.NoError(t, err)

	// one degree of arc on the equator
	assert.InDelta(t, 111194.9, origin.DistanceMeters(east), 1)
	assert.InDelta(t, origin.DistanceMeters(east), east.DistanceMeters(origin), 1e-9)
	assert.Zero(t, origin.DistanceMeters(origin))
}

func TestDiagonalMeters(t *testing.T) {
	box, err := NewBoundingBoxFromDegrees(0, 0, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 111194.9, box.DiagonalMeters(), 1)

	point, err := NewBoundingBoxFromDegrees(10, 10, 10, 10)
	require.NoError(t, err)
	assert.Zero(t, point.DiagonalMeters())
}
