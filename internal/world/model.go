package world

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Face - одна грань в модели секции
type Face struct {
	Pos    vec.Vec3
	Dir    block.Direction
	Height float64
	Block  block.BlockID
	// Light - освещённость ячейки, в которую смотрит грань
	Light block.Brightness
}

// SectionModel - неизменяемая модель секции для рендера
type SectionModel struct {
	Position SectionPosition
	Faces    []Face
}

// BlockView - источник данных для построения модели
type BlockView interface {
	BlockAt(pos vec.Vec3) (block.BlockID, block.ExtraData)
	BrightnessAt(pos vec.Vec3) block.Brightness
}

type modelBuilder struct {
	view    BlockView
	current block.BlockID
	faces   []Face
}

func (b *modelBuilder) AddFace(pos vec.Vec3, dir block.Direction, height float64) {
	b.faces = append(b.faces, Face{
		Pos:    pos,
		Dir:    dir,
		Height: height,
		Block:  b.current,
		Light:  b.view.BrightnessAt(pos.Add(dir.Offset())),
	})
}

func (b *modelBuilder) ExtraData(pos vec.Vec3) block.ExtraData {
	_, extra := b.view.BlockAt(pos)
	return extra
}

// BuildSectionModel строит модель секции. Окрестность каждого блока собирается
// заново из view и не сохраняется.
func BuildSectionModel(sp SectionPosition, view BlockView, catalog *block.Catalog) *SectionModel {
	b := &modelBuilder{view: view}
	origin := sp.Origin()

	var n block.Neighborhood
	for y := 0; y < SectionSize; y++ {
		for z := 0; z < SectionSize; z++ {
			for x := 0; x < SectionSize; x++ {
				pos := vec.Vec3{X: origin.X + x, Y: origin.Y + y, Z: origin.Z + z}
				id, _ := view.BlockAt(pos)
				if id == block.VoidBlockID {
					continue
				}
				fillNeighborhood(&n, pos, view, catalog)
				b.current = id
				n.At(0, 0, 0).AddRenderGeometry(b, pos, &n)
			}
		}
	}
	return &SectionModel{Position: sp, Faces: b.faces}
}

func fillNeighborhood(n *block.Neighborhood, pos vec.Vec3, view BlockView, catalog *block.Catalog) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				id, _ := view.BlockAt(vec.Vec3{X: pos.X + dx, Y: pos.Y + dy, Z: pos.Z + dz})
				n.Set(dx, dy, dz, catalog.Get(id))
			}
		}
	}
}
