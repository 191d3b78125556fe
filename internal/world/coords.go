package world

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
)

// Размеры чанка и секции в блоках
const (
	ChunkSizeX  = 16
	ChunkSizeY  = 128
	ChunkSizeZ  = 16
	SectionSize = 16

	SectionsPerChunk = ChunkSizeY / SectionSize
	ChunkVolume      = ChunkSizeX * ChunkSizeY * ChunkSizeZ
	ColumnsPerChunk  = ChunkSizeX * ChunkSizeZ
)

// ChunkPosition - координата чанка в сетке чанков
type ChunkPosition struct {
	X, Z int
}

// Less задаёт полный порядок по (X, Z)
func (p ChunkPosition) Less(o ChunkPosition) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Z < o.Z
}

func (p ChunkPosition) String() string {
	return fmt.Sprintf("chunk(%d, %d)", p.X, p.Z)
}

// Offset возвращает соседний чанк
func (p ChunkPosition) Offset(dx, dz int) ChunkPosition {
	return ChunkPosition{X: p.X + dx, Z: p.Z + dz}
}

// DistanceSq - квадрат евклидова расстояния в чанках
func (p ChunkPosition) DistanceSq(o ChunkPosition) int {
	dx := p.X - o.X
	dz := p.Z - o.Z
	return dx*dx + dz*dz
}

// Origin возвращает глобальную позицию блока (0, 0, 0) чанка
func (p ChunkPosition) Origin() vec.Vec3 {
	return vec.Vec3{X: p.X * ChunkSizeX, Y: 0, Z: p.Z * ChunkSizeZ}
}

// GlobalBlock восстанавливает глобальную позицию по локальной
func (p ChunkPosition) GlobalBlock(local vec.Vec3) vec.Vec3 {
	return p.Origin().Add(local)
}

// ChunkOf возвращает чанк, содержащий глобальную позицию
func ChunkOf(pos vec.Vec3) ChunkPosition {
	return ChunkPosition{X: vec.FloorDiv(pos.X, ChunkSizeX), Z: vec.FloorDiv(pos.Z, ChunkSizeZ)}
}

// DecomposeGlobalBlockByChunk разбивает глобальную позицию на чанк и локальное смещение.
// Локальные X и Z всегда лежат в [0, 16), Y не изменяется.
func DecomposeGlobalBlockByChunk(pos vec.Vec3) (ChunkPosition, vec.Vec3) {
	return ChunkOf(pos), vec.Vec3{
		X: vec.FloorMod(pos.X, ChunkSizeX),
		Y: pos.Y,
		Z: vec.FloorMod(pos.Z, ChunkSizeZ),
	}
}

// IsValidY проверяет, что Y лежит внутри высоты мира
func IsValidY(y int) bool {
	return y >= 0 && y < ChunkSizeY
}

// InChunkBounds проверяет локальную позицию
func InChunkBounds(local vec.Vec3) bool {
	return local.X >= 0 && local.X < ChunkSizeX &&
		local.Z >= 0 && local.Z < ChunkSizeZ &&
		IsValidY(local.Y)
}

// BlockIndex - индекс локальной позиции в плотных массивах чанка
func BlockIndex(local vec.Vec3) int {
	return (local.Y*ChunkSizeZ+local.Z)*ChunkSizeX + local.X
}

// LocalFromIndex - обратное к BlockIndex преобразование
func LocalFromIndex(i int) vec.Vec3 {
	return vec.Vec3{
		X: i % ChunkSizeX,
		Z: (i / ChunkSizeX) % ChunkSizeZ,
		Y: i / (ChunkSizeX * ChunkSizeZ),
	}
}

// SectionPosition - координата секции: X и Z совпадают с чанком, Y - номер секции
type SectionPosition struct {
	X, Y, Z int
}

func (s SectionPosition) String() string {
	return fmt.Sprintf("section(%d, %d, %d)", s.X, s.Y, s.Z)
}

// Chunk возвращает чанк секции
func (s SectionPosition) Chunk() ChunkPosition {
	return ChunkPosition{X: s.X, Z: s.Z}
}

// IsValid проверяет, что секция лежит внутри высоты мира
func (s SectionPosition) IsValid() bool {
	return s.Y >= 0 && s.Y < SectionsPerChunk
}

// Origin - глобальная позиция первого блока секции
func (s SectionPosition) Origin() vec.Vec3 {
	return vec.Vec3{X: s.X * SectionSize, Y: s.Y * SectionSize, Z: s.Z * SectionSize}
}

// SectionOf возвращает секцию, содержащую глобальную позицию
func SectionOf(pos vec.Vec3) SectionPosition {
	return SectionPosition{
		X: vec.FloorDiv(pos.X, SectionSize),
		Y: vec.FloorDiv(pos.Y, SectionSize),
		Z: vec.FloorDiv(pos.Z, SectionSize),
	}
}

const (
	packOffset = 1 << 27
	packMask   = 1<<28 - 1
)

// PackBlockPos упаковывает позицию в int64: X и Z по 28 бит, Y - 8 бит.
// Допустимы |X|, |Z| < 2^27 и Y из [0, 256).
func PackBlockPos(pos vec.Vec3) int64 {
	x := uint64(pos.X+packOffset) & packMask
	z := uint64(pos.Z+packOffset) & packMask
	y := uint64(pos.Y) & 0xFF
	return int64(x<<36 | z<<8 | y)
}

// UnpackBlockPos - обратное к PackBlockPos преобразование
func UnpackBlockPos(k int64) vec.Vec3 {
	u := uint64(k)
	return vec.Vec3{
		X: int((u>>36)&packMask) - packOffset,
		Y: int(u & 0xFF),
		Z: int((u>>8)&packMask) - packOffset,
	}
}
