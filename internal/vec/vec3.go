package vec

import "fmt"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется как глобальная позиция блока: Y растёт вверх.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Смещения к шести соседям по граням: +X, -X, +Y, -Y, +Z, -Z.
var FaceOffsets = [6]Vec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// String реализует fmt.Stringer
func (v Vec3) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}

// DistanceSq возвращает квадрат расстояния до другого вектора
func (v Vec3) DistanceSq(other Vec3) int {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v == other
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Neighbors6 возвращает соседей по граням в порядке FaceOffsets
func (v Vec3) Neighbors6() [6]Vec3 {
	var out [6]Vec3
	for i, off := range FaceOffsets {
		out[i] = v.Add(off)
	}
	return out
}

// ForEachInCube вызывает fn для каждой позиции куба 3x3x3 с центром в v (включая сам центр)
func (v Vec3) ForEachInCube(fn func(Vec3)) {
	for dy := -1; dy <= 1; dy++ {
		for dz := -1; dz <= 1; dz++ {
			for dx := -1; dx <= 1; dx++ {
				fn(Vec3{v.X + dx, v.Y + dy, v.Z + dz})
			}
		}
	}
}

// FloorDiv делит с округлением к минус бесконечности
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod возвращает неотрицательный остаток для положительного b
func FloorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
