// Package light считает освещённость мира поиском в ширину по четырёхканальному полю.
package light

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/brentp/intintmap"
)

// Field - поле освещённости, над которым работает распространение
type Field interface {
	Descriptor(pos vec.Vec3) block.Descriptor
	// Brightness возвращает текущее значение и признак того, что ячейка принадлежит полю.
	// Выше мира поле отдаёт небесный свет, ниже и вне загруженной области - темноту.
	Brightness(pos vec.Vec3) (block.Brightness, bool)
	SetBrightness(pos vec.Vec3, b block.Brightness)
	// Height возвращает вершину колонки (x, z) или -1 для пустой колонки
	Height(x, z int) int
}

// Compute вычисляет новое значение ячейки по её соседям
func Compute(f Field, pos vec.Vec3) block.Brightness {
	var maxNeighbor block.Brightness
	for _, n := range pos.Neighbors6() {
		b, _ := f.Brightness(n)
		maxNeighbor = maxNeighbor.Max(b)
	}

	var sky block.Brightness
	if pos.Y > f.Height(pos.X, pos.Z) {
		sky = block.SkyBrightness
	}

	desc := f.Descriptor(pos)
	return desc.InitialBrightness().Max(maxNeighbor.Sub(desc.LightAttenuation()).Max(sky))
}

// Propagate обрабатывает очередь позиций до неподвижной точки. Позиция в очереди
// присутствует не более одного раза. onChange вызывается для каждой изменённой
// ячейки и может быть nil. Возвращает число записей.
func Propagate(f Field, queue []vec.Vec3, onChange func(vec.Vec3)) int {
	queued := intintmap.New(len(queue)*2+64, 0.6)
	work := make([]vec.Vec3, 0, len(queue))
	for _, p := range queue {
		k := world.PackBlockPos(p)
		if _, ok := queued.Get(k); ok {
			continue
		}
		queued.Put(k, 1)
		work = append(work, p)
	}

	writes := 0
	for head := 0; head < len(work); head++ {
		pos := work[head]
		queued.Del(world.PackBlockPos(pos))

		old, ok := f.Brightness(pos)
		if !ok {
			continue
		}
		updated := Compute(f, pos)
		if updated == old {
			continue
		}

		f.SetBrightness(pos, updated)
		writes++
		if onChange != nil {
			onChange(pos)
		}

		for _, n := range pos.Neighbors6() {
			if _, in := f.Brightness(n); !in {
				continue
			}
			k := world.PackBlockPos(n)
			if _, ok := queued.Get(k); ok {
				continue
			}
			queued.Put(k, 1)
			work = append(work, n)
		}

		// Сжимаем обработанный префикс, чтобы очередь не росла бесконечно
		if head > 4096 && head*2 > len(work) {
			work = append(work[:0], work[head+1:]...)
			head = -1
		}
	}
	return writes
}
