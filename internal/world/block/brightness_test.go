package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrightnessOperators(t *testing.T) {
	a := NewBrightness(10, 2, 0, 15)
	b := NewBrightness(3, 5, 1, 0)

	assert.Equal(t, NewBrightness(10, 5, 1, 15), a.Max(b))
	assert.Equal(t, NewBrightness(7, 0, 0, 15), a.Sub(b), "вычитание должно насыщаться в нуле")
	assert.True(t, Brightness{}.IsZero())
	assert.False(t, SkyBrightness.IsZero())
	assert.Equal(t, Brightness{}, SkyBrightness.Sub(Uniform(MaxLight)))
}
