package world

import (
	"testing"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/annel0/voxel-world/internal/world/block/implementations"
)

func testCatalog(t *testing.T) *block.Catalog {
	t.Helper()
	c, err := implementations.NewDefaultCatalog()
	if err != nil {
		t.Fatalf("не удалось создать каталог: %v", err)
	}
	return c
}

type releaseCounter struct{ released int }

func (r *releaseCounter) ReleaseSectionModel(*SectionModel) { r.released++ }

func TestChunkBlockDataCreateAndSet(t *testing.T) {
	c := testCatalog(t)
	d := NewChunkBlockData()

	pos := vec.Vec3{X: 3, Y: 10, Z: 4}
	if id := d.ID(pos); id != block.VoidBlockID {
		t.Errorf("Ожидалась пустота, получен %d", id)
	}
	if h := d.Height(3, 4); h != -1 {
		t.Errorf("Ожидалась высота -1 для пустой колонки, получено %d", h)
	}

	o := block.NewOrientation(block.PosZ, block.PosY)
	d.Set(pos, c.Get(block.StoneBlockID), o, nil)
	if id := d.ID(pos); id != block.StoneBlockID {
		t.Errorf("Ожидался камень, получен %d", id)
	}
	if got := d.Orientation(pos); got != o {
		t.Errorf("Ориентация не сохранилась: %d != %d", got, o)
	}
	if h := d.Height(3, 4); h != 10 {
		t.Errorf("Ожидалась высота 10, получено %d", h)
	}
}

func TestChunkBlockDataOutOfRange(t *testing.T) {
	c := testCatalog(t)
	d := NewChunkBlockData()

	d.Set(vec.Vec3{X: 0, Y: ChunkSizeY, Z: 0}, c.Get(block.StoneBlockID), 0, nil)
	d.Set(vec.Vec3{X: 0, Y: -1, Z: 0}, c.Get(block.StoneBlockID), 0, nil)
	if h := d.Height(0, 0); h != -1 {
		t.Errorf("Запись вне высоты мира должна игнорироваться, высота %d", h)
	}
	if id := d.ID(vec.Vec3{X: 0, Y: 500, Z: 0}); id != block.VoidBlockID {
		t.Errorf("Чтение вне высоты мира должно давать пустоту, получен %d", id)
	}

	// Локальные X и Z за пределами чанка не переходят в соседние колонки
	d.Set(vec.Vec3{X: ChunkSizeX, Y: 3, Z: 0}, c.Get(block.StoneBlockID), 0, nil)
	d.Set(vec.Vec3{X: -1, Y: 3, Z: 1}, c.Get(block.StoneBlockID), 0, nil)
	if h := d.Height(0, 1); h != -1 {
		t.Errorf("Запись вне чанка попала в колонку (0, 1), высота %d", h)
	}
	if id := d.ID(vec.Vec3{X: 0, Y: 0, Z: ChunkSizeZ}); id != block.VoidBlockID {
		t.Errorf("Чтение вне чанка должно давать пустоту, получен %d", id)
	}
}

func TestChunkBlockDataHeightMap(t *testing.T) {
	c := testCatalog(t)
	d := NewChunkBlockData()
	stone := c.Get(block.StoneBlockID)

	d.Set(vec.Vec3{X: 1, Y: 5, Z: 1}, stone, 0, nil)
	d.Set(vec.Vec3{X: 1, Y: 20, Z: 1}, stone, 0, nil)
	d.Set(vec.Vec3{X: 1, Y: 12, Z: 1}, stone, 0, nil)
	if h := d.Height(1, 1); h != 20 {
		t.Fatalf("Ожидалась высота 20, получено %d", h)
	}

	// Удаление верхнего блока сканирует колонку вниз
	d.Set(vec.Vec3{X: 1, Y: 20, Z: 1}, block.Void, 0, nil)
	if h := d.Height(1, 1); h != 12 {
		t.Errorf("Ожидалась высота 12, получено %d", h)
	}

	// Удаление блока ниже вершины высоту не меняет
	d.Set(vec.Vec3{X: 1, Y: 5, Z: 1}, block.Void, 0, nil)
	if h := d.Height(1, 1); h != 12 {
		t.Errorf("Ожидалась высота 12, получено %d", h)
	}

	d.Set(vec.Vec3{X: 1, Y: 12, Z: 1}, block.Void, 0, nil)
	if h := d.Height(1, 1); h != -1 {
		t.Errorf("Ожидалась высота -1, получено %d", h)
	}

	d.Set(vec.Vec3{X: 2, Y: 7, Z: 2}, stone, 0, nil)
	saved := d.Height(2, 2)
	d.RecomputeHeightMap()
	if d.Height(2, 2) != saved {
		t.Errorf("Пересчёт карты высот изменил значение: %d != %d", d.Height(2, 2), saved)
	}
}

func TestChunkBlockDataExtraInvariant(t *testing.T) {
	c := testCatalog(t)
	d := NewChunkBlockData()
	pos := vec.Vec3{X: 4, Y: 40, Z: 4}

	d.Set(pos, c.Get(block.WaterBlockID), 0, nil)
	if d.ExtraCount() != 1 {
		t.Fatalf("Вода должна иметь дополнительные данные, записей %d", d.ExtraCount())
	}
	liquid, ok := d.Extra(pos).(*block.LiquidData)
	if !ok || liquid.Level != implementations.WaterSourceLevel {
		t.Errorf("Ожидался источник воды, получено %#v", d.Extra(pos))
	}

	clone := d.Clone()
	clone.Extra(pos).(*block.LiquidData).Level = 1
	if d.Extra(pos).(*block.LiquidData).Level != implementations.WaterSourceLevel {
		t.Error("Клон должен иметь независимые дополнительные данные")
	}

	d.Set(pos, c.Get(block.StoneBlockID), 0, nil)
	if d.ExtraCount() != 0 {
		t.Errorf("Камень не должен иметь дополнительных данных, записей %d", d.ExtraCount())
	}
}

func TestChunkBrightnessBounds(t *testing.T) {
	b := NewChunkBrightnessData()
	if got := b.Get(vec.Vec3{Y: ChunkSizeY}); got != block.SkyBrightness {
		t.Errorf("Выше мира ожидался небесный свет, получено %v", got)
	}
	if got := b.Get(vec.Vec3{Y: -1}); !got.IsZero() {
		t.Errorf("Ниже мира ожидалась темнота, получено %v", got)
	}
	b.Set(vec.Vec3{X: 1, Y: 2, Z: 3}, block.Uniform(7))
	if got := b.Get(vec.Vec3{X: 1, Y: 2, Z: 3}); got != block.Uniform(7) {
		t.Errorf("Освещённость не сохранилась: %v", got)
	}
}

func TestChunkModelsRelease(t *testing.T) {
	ch := NewChunk(ChunkPosition{X: 2, Z: -3}, nil, nil)
	r := &releaseCounter{}

	m1 := &SectionModel{Position: ch.Section(0)}
	m2 := &SectionModel{Position: ch.Section(0)}
	ch.SetModel(0, m1, r)
	ch.SetModel(0, m2, r)
	if r.released != 1 {
		t.Errorf("Замена модели должна освободить старую, освобождено %d", r.released)
	}
	ch.SetModel(3, &SectionModel{}, r)
	ch.Release(r)
	if r.released != 3 {
		t.Errorf("Ожидалось 3 освобождения, получено %d", r.released)
	}
	if ch.Model(0) != nil || ch.Model(99) != nil {
		t.Error("После освобождения моделей быть не должно")
	}
}
