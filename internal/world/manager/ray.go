package manager

import (
	"math"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
)

// RayStep - шаг марша луча в блоках
const RayStep = 0.05

// RayHit описывает попадание луча
type RayHit struct {
	Pos      vec.Vec3
	Face     block.Direction
	Distance float64
	Block    block.Descriptor
}

// RayFilter решает, может ли блок быть целью луча
type RayFilter func(pos vec.Vec3, desc block.Descriptor) bool

// FindClosestIntersectedBlock идёт по лучу с фиксированным шагом и возвращает
// первый блок, принятый фильтром и пересечённый его формой. Distance - точное
// расстояние до точки входа, а не до ближайшего шага.
// Пустой фильтр принимает любой непустой блок.
func (m *ChunkManager) FindClosestIntersectedBlock(origin, dir mgl64.Vec3, maxDistance float64, filter RayFilter) (RayHit, bool) {
	if dir.Len() == 0 || maxDistance <= 0 {
		return RayHit{}, false
	}
	dir = dir.Normalize()

	var last vec.Vec3
	visited := false
	for i := 0; ; i++ {
		// Шаг умножается, а не накапливается: иначе копится ошибка округления
		t := float64(i) * RayStep
		if t > maxDistance {
			break
		}
		p := origin.Add(dir.Mul(t))
		cell := vec.Vec3{
			X: int(math.Floor(p[0])),
			Y: int(math.Floor(p[1])),
			Z: int(math.Floor(p[2])),
		}
		if visited && cell == last {
			continue
		}
		last, visited = cell, true

		if !world.IsValidY(cell.Y) {
			continue
		}
		desc := m.GetBlockDesc(cell)
		if desc.ID() == block.VoidBlockID {
			continue
		}
		if filter != nil && !filter(cell, desc) {
			continue
		}

		local := origin.Sub(mgl64.Vec3{float64(cell.X), float64(cell.Y), float64(cell.Z)})
		if face, dist, ok := desc.RayIntersect(local, dir, 0, maxDistance); ok {
			return RayHit{Pos: cell, Face: face, Distance: dist, Block: desc}, true
		}
	}
	return RayHit{}, false
}
