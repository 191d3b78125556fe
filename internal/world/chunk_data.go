package world

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// ChunkBlockData хранит блоки одного чанка без освещения.
// Дополнительные данные присутствуют ровно для блоков, чьё описание требует их.
type ChunkBlockData struct {
	ids          [ChunkVolume]block.BlockID
	orientations [ChunkVolume]block.Orientation
	heights      [ColumnsPerChunk]int16
	extra        map[int]block.ExtraData
}

// NewChunkBlockData создаёт пустой чанк: везде пустота, карта высот -1
func NewChunkBlockData() *ChunkBlockData {
	d := &ChunkBlockData{extra: make(map[int]block.ExtraData)}
	for i := range d.heights {
		d.heights[i] = -1
	}
	return d
}

// Clone возвращает глубокую копию
func (d *ChunkBlockData) Clone() *ChunkBlockData {
	c := &ChunkBlockData{
		ids:          d.ids,
		orientations: d.orientations,
		heights:      d.heights,
		extra:        make(map[int]block.ExtraData, len(d.extra)),
	}
	for k, v := range d.extra {
		c.extra[k] = v.Clone()
	}
	return c
}

// ID возвращает ID блока; вне границ чанка - пустота
func (d *ChunkBlockData) ID(local vec.Vec3) block.BlockID {
	if !InChunkBounds(local) {
		return block.VoidBlockID
	}
	return d.ids[BlockIndex(local)]
}

// Orientation возвращает ориентацию блока
func (d *ChunkBlockData) Orientation(local vec.Vec3) block.Orientation {
	if !InChunkBounds(local) {
		return 0
	}
	return d.orientations[BlockIndex(local)]
}

// Extra возвращает дополнительные данные или nil
func (d *ChunkBlockData) Extra(local vec.Vec3) block.ExtraData {
	if !InChunkBounds(local) {
		return nil
	}
	return d.extra[BlockIndex(local)]
}

// Instance возвращает состояние блока. Extra не копируется.
func (d *ChunkBlockData) Instance(local vec.Vec3) block.Instance {
	if !InChunkBounds(local) {
		return block.Instance{}
	}
	i := BlockIndex(local)
	return block.Instance{ID: d.ids[i], Orientation: d.orientations[i], Extra: d.extra[i]}
}

// Height возвращает Y самого верхнего непустого блока колонки или -1
func (d *ChunkBlockData) Height(x, z int) int {
	return int(d.heights[z*ChunkSizeX+x])
}

// ExtraCount возвращает число записей дополнительных данных
func (d *ChunkBlockData) ExtraCount() int {
	return len(d.extra)
}

// Set записывает блок. Если описание требует дополнительных данных, а extra
// не передано, создаются данные по умолчанию. Запись вне границ чанка игнорируется.
func (d *ChunkBlockData) Set(local vec.Vec3, desc block.Descriptor, orientation block.Orientation, extra block.ExtraData) {
	if !InChunkBounds(local) {
		return
	}
	i := BlockIndex(local)
	d.ids[i] = desc.ID()
	d.orientations[i] = orientation

	if desc.HasExtraData() {
		if extra == nil {
			extra = desc.CreateExtraData()
		}
		d.extra[i] = extra
	} else {
		delete(d.extra, i)
	}

	d.updateHeight(local, desc.ID() != block.VoidBlockID)
}

func (d *ChunkBlockData) updateHeight(local vec.Vec3, filled bool) {
	col := local.Z*ChunkSizeX + local.X
	h := int(d.heights[col])
	switch {
	case filled && local.Y > h:
		d.heights[col] = int16(local.Y)
	case !filled && local.Y == h:
		d.heights[col] = int16(d.scanDown(local.X, local.Z, local.Y-1))
	}
}

func (d *ChunkBlockData) scanDown(x, z, from int) int {
	for y := from; y >= 0; y-- {
		if d.ids[BlockIndex(vec.Vec3{X: x, Y: y, Z: z})] != block.VoidBlockID {
			return y
		}
	}
	return -1
}

// RecomputeHeightMap пересчитывает карту высот целиком
func (d *ChunkBlockData) RecomputeHeightMap() {
	for z := 0; z < ChunkSizeZ; z++ {
		for x := 0; x < ChunkSizeX; x++ {
			d.heights[z*ChunkSizeX+x] = int16(d.scanDown(x, z, ChunkSizeY-1))
		}
	}
}

// ChunkBrightnessData - плотная сетка освещённости чанка
type ChunkBrightnessData struct {
	values [ChunkVolume]block.Brightness
}

// NewChunkBrightnessData создаёт тёмную сетку
func NewChunkBrightnessData() *ChunkBrightnessData {
	return &ChunkBrightnessData{}
}

// Get возвращает освещённость; выше мира - небесный свет, ниже - темнота
func (b *ChunkBrightnessData) Get(local vec.Vec3) block.Brightness {
	switch {
	case local.Y >= ChunkSizeY:
		return block.SkyBrightness
	case local.Y < 0:
		return block.Brightness{}
	}
	return b.values[BlockIndex(local)]
}

// Set записывает освещённость; вне границ чанка игнорируется
func (b *ChunkBrightnessData) Set(local vec.Vec3, v block.Brightness) {
	if !InChunkBounds(local) {
		return
	}
	b.values[BlockIndex(local)] = v
}
