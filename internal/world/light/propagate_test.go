package light

import (
	"testing"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/annel0/voxel-world/internal/world/block/implementations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatArea(t *testing.T, height int, edit func(c *block.Catalog, d *world.ChunkBlockData)) (*Area, *block.Catalog) {
	t.Helper()
	c, err := implementations.NewDefaultCatalog()
	require.NoError(t, err)

	d := world.NewChunkBlockData()
	world.NewFlatGenerator(c, height).Generate(world.ChunkPosition{}, d)
	if edit != nil {
		edit(c, d)
	}

	r := world.NewRegion(world.ChunkPosition{})
	r.SetChunk(0, 0, d, nil)
	return NewArea(r, c), c
}

func brightnessAt(a *Area, pos vec.Vec3) block.Brightness {
	b, _ := a.Brightness(pos)
	return b
}

func allPositions() []vec.Vec3 {
	out := make([]vec.Vec3, 0, world.ChunkVolume)
	for i := 0; i < world.ChunkVolume; i++ {
		out = append(out, world.LocalFromIndex(i))
	}
	return out
}

func TestSkyLightOverFlatWorld(t *testing.T) {
	a, _ := flatArea(t, 10, nil)
	writes := a.Propagate()
	assert.GreaterOrEqual(t, writes, 0)

	assert.Equal(t, block.SkyBrightness, brightnessAt(a, vec.Vec3{X: 3, Y: 11, Z: 3}))
	assert.Equal(t, block.SkyBrightness, brightnessAt(a, vec.Vec3{X: 3, Y: 127, Z: 3}))
	assert.True(t, brightnessAt(a, vec.Vec3{X: 3, Y: 5, Z: 3}).IsZero(), "внутри камня темно")
}

func TestSkyLightUnderOverhang(t *testing.T) {
	a, _ := flatArea(t, 10, func(c *block.Catalog, d *world.ChunkBlockData) {
		d.Set(vec.Vec3{X: 8, Y: 20, Z: 8}, c.Get(block.StoneBlockID), 0, nil)
	})
	a.Propagate()

	under := brightnessAt(a, vec.Vec3{X: 8, Y: 15, Z: 8})
	assert.Equal(t, uint8(block.MaxLight-1), under[block.ChannelSky], "под навесом свет приходит сбоку")
	assert.True(t, brightnessAt(a, vec.Vec3{X: 8, Y: 20, Z: 8}).IsZero())
}

func TestTorchLightsCavity(t *testing.T) {
	a, _ := flatArea(t, 10, func(c *block.Catalog, d *world.ChunkBlockData) {
		for y := 3; y <= 6; y++ {
			d.Set(vec.Vec3{X: 8, Y: y, Z: 8}, block.Void, 0, nil)
		}
		d.Set(vec.Vec3{X: 8, Y: 5, Z: 8}, c.Get(block.TorchBlockID), 0, nil)
	})
	a.Propagate()

	torch := brightnessAt(a, vec.Vec3{X: 8, Y: 5, Z: 8})
	assert.Equal(t, block.NewBrightness(14, 11, 6, 0), torch)

	below := brightnessAt(a, vec.Vec3{X: 8, Y: 4, Z: 8})
	assert.Equal(t, block.NewBrightness(13, 10, 5, 0), below)
	farther := brightnessAt(a, vec.Vec3{X: 8, Y: 3, Z: 8})
	assert.Equal(t, block.NewBrightness(12, 9, 4, 0), farther)
}

func TestPropagateIsIdempotent(t *testing.T) {
	a, _ := flatArea(t, 12, func(c *block.Catalog, d *world.ChunkBlockData) {
		d.Set(vec.Vec3{X: 2, Y: 30, Z: 2}, c.Get(block.GlassBlockID), 0, nil)
		d.Set(vec.Vec3{X: 9, Y: 13, Z: 9}, c.Get(block.TorchBlockID), 0, nil)
	})
	first := a.Propagate()
	assert.Greater(t, first, 0)

	second := Propagate(a, allPositions(), nil)
	assert.Equal(t, 0, second, "повторное распространение не должно ничего менять")
}

func TestPropagateReportsChanges(t *testing.T) {
	a, c := flatArea(t, 10, nil)
	a.Propagate()

	// Убираем вершину колонки: ячейка становится открытой небу
	pos := vec.Vec3{X: 4, Y: 10, Z: 4}
	a.Region().Blocks(0, 0).Set(pos, c.Get(block.VoidBlockID), 0, nil)

	var changed []vec.Vec3
	writes := Propagate(a, []vec.Vec3{pos, pos}, func(p vec.Vec3) { changed = append(changed, p) })
	assert.Equal(t, len(changed), writes)
	assert.Contains(t, changed, pos)
	assert.Equal(t, block.SkyBrightness, brightnessAt(a, pos))
}

func TestAreaBounds(t *testing.T) {
	a, _ := flatArea(t, 10, nil)
	b, in := a.Brightness(vec.Vec3{X: 0, Y: world.ChunkSizeY, Z: 0})
	assert.False(t, in)
	assert.Equal(t, block.SkyBrightness, b)

	_, in = a.Brightness(vec.Vec3{X: 40, Y: 5, Z: 0})
	assert.False(t, in, "соседний чанк без данных не входит в поле")
	_, in = a.Brightness(vec.Vec3{X: 0, Y: -1, Z: 0})
	assert.False(t, in)
}
