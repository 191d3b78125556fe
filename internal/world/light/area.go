package light

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Area - поле освещённости над окрестностью 3x3 чанков, используемое при загрузке
type Area struct {
	region  *world.Region
	catalog *block.Catalog
}

// NewArea оборачивает окрестность. Чанки без сетки освещённости получают новую.
func NewArea(region *world.Region, catalog *block.Catalog) *Area {
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if b := region.Blocks(dx, dz); b != nil && region.LightData(dx, dz) == nil {
				region.SetChunk(dx, dz, b, world.NewChunkBrightnessData())
			}
		}
	}
	return &Area{region: region, catalog: catalog}
}

// Region возвращает обёрнутую окрестность
func (a *Area) Region() *world.Region {
	return a.region
}

func (a *Area) locate(pos vec.Vec3) (*world.ChunkBlockData, *world.ChunkBrightnessData, vec.Vec3, bool) {
	dx, dz, local, ok := a.region.Locate(pos)
	if !ok {
		return nil, nil, local, false
	}
	b := a.region.Blocks(dx, dz)
	if b == nil {
		return nil, nil, local, false
	}
	return b, a.region.LightData(dx, dz), local, true
}

func (a *Area) Descriptor(pos vec.Vec3) block.Descriptor {
	id, _ := a.region.BlockAt(pos)
	return a.catalog.Get(id)
}

func (a *Area) Brightness(pos vec.Vec3) (block.Brightness, bool) {
	if pos.Y >= world.ChunkSizeY {
		return block.SkyBrightness, false
	}
	if pos.Y < 0 {
		return block.Brightness{}, false
	}
	_, l, local, ok := a.locate(pos)
	if !ok {
		return block.Brightness{}, false
	}
	return l.Get(local), true
}

func (a *Area) SetBrightness(pos vec.Vec3, v block.Brightness) {
	if _, l, local, ok := a.locate(pos); ok {
		l.Set(local, v)
	}
}

func (a *Area) Height(x, z int) int {
	b, _, local, ok := a.locate(vec.Vec3{X: x, Z: z})
	if !ok {
		return world.ChunkSizeY
	}
	return b.Height(local.X, local.Z)
}

// Seed записывает небесный свет над картой высот и свечение источников
// и возвращает начальную очередь распространения
func (a *Area) Seed() []vec.Vec3 {
	var queue []vec.Vec3
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			b := a.region.Blocks(dx, dz)
			if b == nil {
				continue
			}
			origin := a.region.Center.Offset(dx, dz).Origin()
			queue = a.seedChunk(queue, origin, b, a.region.LightData(dx, dz))
		}
	}
	return queue
}

func (a *Area) seedChunk(queue []vec.Vec3, origin vec.Vec3, b *world.ChunkBlockData, l *world.ChunkBrightnessData) []vec.Vec3 {
	for z := 0; z < world.ChunkSizeZ; z++ {
		for x := 0; x < world.ChunkSizeX; x++ {
			h := b.Height(x, z)
			for y := h + 1; y < world.ChunkSizeY; y++ {
				l.Set(vec.Vec3{X: x, Y: y, Z: z}, block.SkyBrightness)
			}

			// Ячейки ниже вершины, которые видят небо сбоку
			gx, gz := origin.X+x, origin.Z+z
			low := h
			for _, off := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				if nh := a.Height(gx+off[0], gz+off[1]); nh+1 < low {
					low = nh + 1
				}
			}
			if low < 0 {
				low = 0
			}
			for y := low; y <= h; y++ {
				queue = append(queue, vec.Vec3{X: gx, Y: y, Z: gz})
			}

			for y := 0; y <= h; y++ {
				local := vec.Vec3{X: x, Y: y, Z: z}
				desc := a.catalog.Get(b.ID(local))
				if !desc.IsLightSource() {
					continue
				}
				l.Set(local, l.Get(local).Max(desc.InitialBrightness()))
				pos := vec.Vec3{X: gx, Y: y, Z: gz}
				for _, n := range pos.Neighbors6() {
					if _, in := a.Brightness(n); in {
						queue = append(queue, n)
					}
				}
			}
		}
	}
	return queue
}

// Propagate засевает и распространяет свет по всей окрестности
func (a *Area) Propagate() int {
	return Propagate(a, a.Seed(), nil)
}
