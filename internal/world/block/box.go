package block

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box - осевой параллелепипед в локальных координатах блока
type Box struct {
	Min, Max mgl64.Vec3
}

// UnitBox занимает весь блок
var UnitBox = Box{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}

// IsZero сообщает, что параллелепипед не задан
func (b Box) IsZero() bool {
	return b.Min == (mgl64.Vec3{}) && b.Max == (mgl64.Vec3{})
}

// Intersect пересекает луч с параллелепипедом методом плит.
// Возвращает грань и параметр входа. Для луча, стартующего внутри, возвращается
// грань, противоположная доминирующей компоненте направления, и исходный tMin.
func (b Box) Intersect(origin, dir mgl64.Vec3, tMin, tMax float64) (Direction, float64, bool) {
	entered := false
	var face Direction
	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		if math.Abs(d) < 1e-12 {
			if o < b.Min[axis] || o > b.Max[axis] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d
		t0 := (b.Min[axis] - o) * inv
		t1 := (b.Max[axis] - o) * inv
		enter := DirectionFromAxis(axis, false)
		if inv < 0 {
			t0, t1 = t1, t0
			enter = DirectionFromAxis(axis, true)
		}
		if t0 > tMin {
			tMin = t0
			face = enter
			entered = true
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return 0, 0, false
		}
	}
	if !entered {
		face = dominantFace(dir)
	}
	return face, tMin, true
}

func dominantFace(dir mgl64.Vec3) Direction {
	axis := 0
	for i := 1; i < 3; i++ {
		if math.Abs(dir[i]) > math.Abs(dir[axis]) {
			axis = i
		}
	}
	return DirectionFromAxis(axis, dir[axis] < 0)
}
