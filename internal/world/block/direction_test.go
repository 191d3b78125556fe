package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrientationZeroValueIsIdentity(t *testing.T) {
	var o Orientation
	assert.Equal(t, PosX, o.X())
	assert.Equal(t, PosY, o.Y())
	assert.Equal(t, PosZ, o.Z())
	assert.Equal(t, o, NewOrientation(PosX, PosY))
}

func TestOrientationRoundTrip(t *testing.T) {
	all := AllOrientations()
	assert.Len(t, all, 24)

	seen := make(map[Orientation]bool)
	for _, o := range all {
		assert.True(t, o.IsValid())
		assert.False(t, seen[o], "ориентации должны быть различны")
		seen[o] = true

		for _, d := range Directions {
			r := o.OriginToRotated(d)
			assert.Equal(t, d, o.RotatedToOrigin(r), "ориентация %d, направление %s", o, d)
		}
		assert.Equal(t, Cross(o.X(), o.Y()), o.Z())
	}
}

func TestInvalidOrientationPanics(t *testing.T) {
	assert.Panics(t, func() { NewOrientation(PosX, PosX) })
	assert.Panics(t, func() { NewOrientation(PosY, NegY) })
	assert.Panics(t, func() { Cross(PosZ, NegZ) })
}

func TestCrossTable(t *testing.T) {
	assert.Equal(t, PosZ, Cross(PosX, PosY))
	assert.Equal(t, NegZ, Cross(PosY, PosX))
	assert.Equal(t, PosX, Cross(PosY, PosZ))
	assert.Equal(t, PosY, Cross(PosZ, PosX))
}

func TestDirectionHelpers(t *testing.T) {
	for _, d := range Directions {
		assert.Equal(t, d, d.Opposite().Opposite())
		assert.NotEqual(t, d.IsPositive(), d.Opposite().IsPositive())
		assert.Equal(t, d, DirectionFromAxis(d.Axis(), d.IsPositive()))
	}
	assert.Equal(t, "-Y", NegY.String())
}
