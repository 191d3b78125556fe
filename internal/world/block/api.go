package block

import (
	"github.com/annel0/voxel-world/internal/vec"
)

// BlockAPI определяет интерфейс для взаимодействия обработчиков блоков с миром.
// Позиции глобальные; чтение за пределами высоты мира возвращает пустоту,
// запись туда игнорируется.
type BlockAPI interface {
	// GetBlock возвращает состояние блока. Extra принадлежит миру и не должно изменяться.
	GetBlock(pos vec.Vec3) Instance

	// GetBlockDesc возвращает описание блока в позиции.
	GetBlockDesc(pos vec.Vec3) Descriptor

	// SetBlock записывает состояние блока.
	SetBlock(pos vec.Vec3, inst Instance)
}
