package world

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Region - окрестность 3x3 чанков вокруг центрального.
// Отсутствующие чанки читаются как пустота без света.
type Region struct {
	Center ChunkPosition
	blocks [3][3]*ChunkBlockData
	light  [3][3]*ChunkBrightnessData
}

// NewRegion создаёт пустую окрестность
func NewRegion(center ChunkPosition) *Region {
	return &Region{Center: center}
}

// SetChunk задаёт чанк со смещением (dx, dz) из [-1, 1]
func (r *Region) SetChunk(dx, dz int, blocks *ChunkBlockData, light *ChunkBrightnessData) {
	checkRegionIndex(dx, dz)
	r.blocks[dx+1][dz+1] = blocks
	r.light[dx+1][dz+1] = light
}

// Blocks возвращает блочные данные чанка со смещением (dx, dz)
func (r *Region) Blocks(dx, dz int) *ChunkBlockData {
	checkRegionIndex(dx, dz)
	return r.blocks[dx+1][dz+1]
}

// LightData возвращает освещённость чанка со смещением (dx, dz)
func (r *Region) LightData(dx, dz int) *ChunkBrightnessData {
	checkRegionIndex(dx, dz)
	return r.light[dx+1][dz+1]
}

func checkRegionIndex(dx, dz int) {
	if dx < -1 || dx > 1 || dz < -1 || dz > 1 {
		panic(fmt.Sprintf("world: смещение окрестности вне диапазона (%d, %d)", dx, dz))
	}
}

// Locate находит слот окрестности и локальную позицию
func (r *Region) Locate(pos vec.Vec3) (dx, dz int, local vec.Vec3, ok bool) {
	cp, local := DecomposeGlobalBlockByChunk(pos)
	dx, dz = cp.X-r.Center.X, cp.Z-r.Center.Z
	if dx < -1 || dx > 1 || dz < -1 || dz > 1 {
		return 0, 0, local, false
	}
	return dx, dz, local, true
}

// BlockAt возвращает ID и дополнительные данные блока
func (r *Region) BlockAt(pos vec.Vec3) (block.BlockID, block.ExtraData) {
	dx, dz, local, ok := r.Locate(pos)
	if !ok {
		return block.VoidBlockID, nil
	}
	d := r.blocks[dx+1][dz+1]
	if d == nil {
		return block.VoidBlockID, nil
	}
	return d.ID(local), d.Extra(local)
}

// BrightnessAt возвращает освещённость: выше мира - небо, вне окрестности - темнота
func (r *Region) BrightnessAt(pos vec.Vec3) block.Brightness {
	if pos.Y >= ChunkSizeY {
		return block.SkyBrightness
	}
	dx, dz, local, ok := r.Locate(pos)
	if !ok {
		return block.Brightness{}
	}
	l := r.light[dx+1][dz+1]
	if l == nil {
		return block.Brightness{}
	}
	return l.Get(local)
}
