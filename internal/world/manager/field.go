package manager

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// lightField открывает загруженные чанки распространению света.
// Незагруженные чанки не входят в поле и не загружаются.
type lightField struct {
	m *ChunkManager
}

func (f lightField) Descriptor(pos vec.Vec3) block.Descriptor {
	if !world.IsValidY(pos.Y) {
		return block.Void
	}
	c, local, ok := f.m.peek(pos)
	if !ok {
		return block.Void
	}
	return f.m.catalog.Get(c.Blocks.ID(local))
}

func (f lightField) Brightness(pos vec.Vec3) (block.Brightness, bool) {
	switch {
	case pos.Y >= world.ChunkSizeY:
		return block.SkyBrightness, false
	case pos.Y < 0:
		return block.Brightness{}, false
	}
	c, local, ok := f.m.peek(pos)
	if !ok {
		return block.Brightness{}, false
	}
	return c.Light.Get(local), true
}

func (f lightField) SetBrightness(pos vec.Vec3, b block.Brightness) {
	if c, local, ok := f.m.peek(pos); ok {
		c.Light.Set(local, b)
	}
}

func (f lightField) Height(x, z int) int {
	c, local, ok := f.m.peek(vec.Vec3{X: x, Z: z})
	if !ok {
		return world.ChunkSizeY
	}
	return c.Blocks.Height(local.X, local.Z)
}
