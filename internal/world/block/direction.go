package block

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
)

// Direction - одно из шести направлений вдоль осей
type Direction uint8

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

const invalidDirection Direction = 0xFF

// Directions перечисляет все направления в порядке vec.FaceOffsets
var Directions = [6]Direction{PosX, NegX, PosY, NegY, PosZ, NegZ}

var directionNames = [6]string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"}

func (d Direction) String() string {
	if d > NegZ {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// Opposite возвращает противоположное направление
func (d Direction) Opposite() Direction { return d ^ 1 }

// IsPositive сообщает, направлено ли d в положительную сторону оси
func (d Direction) IsPositive() bool { return d&1 == 0 }

// Axis возвращает индекс оси: 0 - X, 1 - Y, 2 - Z
func (d Direction) Axis() int { return int(d >> 1) }

// Offset возвращает единичное смещение вдоль направления
func (d Direction) Offset() vec.Vec3 { return vec.FaceOffsets[d] }

// DirectionFromAxis строит направление по оси и знаку
func DirectionFromAxis(axis int, positive bool) Direction {
	d := Direction(axis * 2)
	if !positive {
		d++
	}
	return d
}

// crossTable[a][b] = a x b, invalidDirection для параллельных осей
var crossTable = buildCrossTable()

func buildCrossTable() [6][6]Direction {
	var t [6][6]Direction
	for _, a := range Directions {
		for _, b := range Directions {
			t[a][b] = invalidDirection
			if a.Axis() == b.Axis() {
				continue
			}
			oa, ob := a.Offset(), b.Offset()
			c := vec.Vec3{
				X: oa.Y*ob.Z - oa.Z*ob.Y,
				Y: oa.Z*ob.X - oa.X*ob.Z,
				Z: oa.X*ob.Y - oa.Y*ob.X,
			}
			for _, d := range Directions {
				if d.Offset() == c {
					t[a][b] = d
				}
			}
		}
	}
	return t
}

// Cross возвращает векторное произведение направлений. Паникует для параллельных осей.
func Cross(a, b Direction) Direction {
	c := crossTable[a][b]
	if c == invalidDirection {
		panic(fmt.Sprintf("block: векторное произведение параллельных направлений %s и %s", a, b))
	}
	return c
}

// Orientation хранит повёрнутые направления исходных осей +X и +Y.
// Нулевое значение соответствует отсутствию поворота.
type Orientation uint8

const identityBits = uint8(PosX) | uint8(PosY)<<3

// NewOrientation создаёт ориентацию. Оси x и y не должны совпадать или быть противоположными.
func NewOrientation(x, y Direction) Orientation {
	if x > NegZ || y > NegZ || x.Axis() == y.Axis() {
		panic(fmt.Sprintf("block: недопустимая ориентация x=%s y=%s", x, y))
	}
	return Orientation((uint8(x) | uint8(y)<<3) ^ identityBits)
}

// X возвращает, куда повёрнута исходная ось +X
func (o Orientation) X() Direction { return Direction((uint8(o) ^ identityBits) & 0x7) }

// Y возвращает, куда повёрнута исходная ось +Y
func (o Orientation) Y() Direction { return Direction(((uint8(o) ^ identityBits) >> 3) & 0x7) }

// Z выводится из X и Y
func (o Orientation) Z() Direction { return Cross(o.X(), o.Y()) }

// IsValid проверяет, что оси X и Y не совпадают и не противоположны
func (o Orientation) IsValid() bool {
	x, y := o.X(), o.Y()
	return x <= NegZ && y <= NegZ && x.Axis() != y.Axis()
}

// OriginToRotated переводит направление из исходной системы блока в повёрнутую
func (o Orientation) OriginToRotated(d Direction) Direction {
	var r Direction
	switch d.Axis() {
	case 0:
		r = o.X()
	case 1:
		r = o.Y()
	default:
		r = o.Z()
	}
	if !d.IsPositive() {
		r = r.Opposite()
	}
	return r
}

// RotatedToOrigin - обратное к OriginToRotated преобразование
func (o Orientation) RotatedToOrigin(d Direction) Direction {
	for _, origin := range Directions {
		if o.OriginToRotated(origin) == d {
			return origin
		}
	}
	panic(fmt.Sprintf("block: недопустимая ориентация %d", uint8(o)))
}

// AllOrientations возвращает все 24 допустимые ориентации
func AllOrientations() []Orientation {
	out := make([]Orientation, 0, 24)
	for _, x := range Directions {
		for _, y := range Directions {
			if x.Axis() != y.Axis() {
				out = append(out, NewOrientation(x, y))
			}
		}
	}
	return out
}
