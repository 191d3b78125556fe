package block

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind - закрытый набор видов блоков
type Kind uint8

const (
	KindVoid Kind = iota
	KindSolid
	KindTransparent
	KindHollow
	KindNonbox
	KindLiquid
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindSolid:
		return "solid"
	case KindTransparent:
		return "transparent"
	case KindHollow:
		return "hollow"
	case KindNonbox:
		return "nonbox"
	case KindLiquid:
		return "liquid"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Descriptor - возможности блока, которые использует ядро мира
type Descriptor interface {
	ID() BlockID
	Name() string
	Kind() Kind
	FaceVisibility(dir Direction) FaceVisibilityProperty
	IsFullOpaque() bool
	IsLightSource() bool
	LightAttenuation() Brightness
	InitialBrightness() Brightness
	HasExtraData() bool
	CreateExtraData() ExtraData
	// Liquid возвращает nil для блоков, не являющихся жидкостью
	Liquid() *LiquidDescriptor
	// RayIntersect работает в локальных координатах блока [0,1)^3 и возвращает
	// грань и параметр луча в точке входа
	RayIntersect(origin, dir mgl64.Vec3, tMin, tMax float64) (Direction, float64, bool)
	AddRenderGeometry(b GeometryBuilder, pos vec.Vec3, n *Neighborhood)
}

// GeometryBuilder принимает грани, которые блок хочет отрисовать
type GeometryBuilder interface {
	AddFace(pos vec.Vec3, dir Direction, height float64)
	// ExtraData возвращает дополнительные данные блока по глобальной позиции
	ExtraData(pos vec.Vec3) ExtraData
}

// Neighborhood - описания блоков куба 3x3x3 вокруг центрального блока.
// Строится заново на каждый вызов и не хранится.
type Neighborhood struct {
	cells [3][3][3]Descriptor
}

// At возвращает соседа со смещением (dx, dy, dz) из диапазона [-1, 1]
func (n *Neighborhood) At(dx, dy, dz int) Descriptor {
	checkNeighborhoodIndex(dx, dy, dz)
	return n.cells[dx+1][dy+1][dz+1]
}

// Set записывает соседа со смещением (dx, dy, dz)
func (n *Neighborhood) Set(dx, dy, dz int, d Descriptor) {
	checkNeighborhoodIndex(dx, dy, dz)
	n.cells[dx+1][dy+1][dz+1] = d
}

// Toward возвращает соседа по грани
func (n *Neighborhood) Toward(dir Direction) Descriptor {
	o := dir.Offset()
	return n.At(o.X, o.Y, o.Z)
}

func checkNeighborhoodIndex(dx, dy, dz int) {
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 || dz < -1 || dz > 1 {
		panic(fmt.Sprintf("block: индекс окрестности вне диапазона (%d, %d, %d)", dx, dy, dz))
	}
}

// Description - стандартная реализация Descriptor для всех видов блоков
type Description struct {
	BlockID   BlockID
	BlockName string
	Type      Kind
	// Emission - собственное свечение блока
	Emission Brightness
	// Attenuation - затухание света; нулевое значение заменяется значением по умолчанию для вида
	Attenuation Brightness
	// Shape используется для KindNonbox
	Shape Box
	Fluid *LiquidDescriptor
}

// Void - пустота, регистрируется в каждом каталоге
var Void Descriptor = &Description{BlockID: VoidBlockID, BlockName: "void", Type: KindVoid}

// TorchBox - форма факела по умолчанию для KindNonbox
var TorchBox = Box{Min: mgl64.Vec3{0.4, 0, 0.4}, Max: mgl64.Vec3{0.6, 0.6, 0.6}}

func (d *Description) ID() BlockID  { return d.BlockID }
func (d *Description) Name() string { return d.BlockName }
func (d *Description) Kind() Kind   { return d.Type }
func (d *Description) Liquid() *LiquidDescriptor {
	if d.Type != KindLiquid {
		return nil
	}
	return d.Fluid
}

func (d *Description) FaceVisibility(Direction) FaceVisibilityProperty {
	switch d.Type {
	case KindSolid:
		return FaceSolid
	case KindHollow:
		return FaceHollow
	case KindNonbox:
		return FaceNonbox
	default:
		return FaceTransparent
	}
}

func (d *Description) IsFullOpaque() bool  { return d.Type == KindSolid }
func (d *Description) IsLightSource() bool { return !d.Emission.IsZero() }

func (d *Description) LightAttenuation() Brightness {
	if !d.Attenuation.IsZero() {
		return d.Attenuation
	}
	switch d.Type {
	case KindSolid:
		return Uniform(MaxLight)
	case KindHollow, KindLiquid:
		return Uniform(2)
	default:
		return Uniform(1)
	}
}

func (d *Description) InitialBrightness() Brightness { return d.Emission }

func (d *Description) HasExtraData() bool { return d.Liquid() != nil }

func (d *Description) CreateExtraData() ExtraData {
	if l := d.Liquid(); l != nil {
		return &LiquidData{Level: l.SourceLevel}
	}
	return nil
}

func (d *Description) shape() (Box, bool) {
	switch d.Type {
	case KindVoid:
		return Box{}, false
	case KindNonbox:
		if d.Shape.IsZero() {
			return TorchBox, true
		}
		return d.Shape, true
	case KindLiquid:
		h := 1.0
		if d.Fluid != nil {
			h = d.Fluid.TopSourceHeight()
		}
		return Box{Max: mgl64.Vec3{1, h, 1}}, true
	default:
		return UnitBox, true
	}
}

func (d *Description) RayIntersect(origin, dir mgl64.Vec3, tMin, tMax float64) (Direction, float64, bool) {
	box, ok := d.shape()
	if !ok {
		return 0, 0, false
	}
	return box.Intersect(origin, dir, tMin, tMax)
}

func (d *Description) AddRenderGeometry(b GeometryBuilder, pos vec.Vec3, n *Neighborhood) {
	switch d.Type {
	case KindVoid:
		return
	case KindNonbox:
		box, _ := d.shape()
		for _, dir := range Directions {
			b.AddFace(pos, dir, box.Max[1])
		}
		return
	}

	height := 1.0
	if l := d.Liquid(); l != nil && n.Toward(PosY).ID() != d.BlockID {
		height = l.LevelToVertexHeight(l.Level(b.ExtraData(pos)))
	}
	for _, dir := range Directions {
		if ShouldEmitFace(d, n.Toward(dir), dir) {
			b.AddFace(pos, dir, height)
		}
	}
}
