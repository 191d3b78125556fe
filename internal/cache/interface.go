package cache

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// BlockDataCache определяет кеш блочных данных чанков, которым пользуются
// воркеры загрузчика для построения окрестности без участия менеджера.
//
// Использование:
//
//	pool := NewChunkBlockDataPool(PoolConfig{Capacity: 256}, collectors)
//	defer pool.Close()
//	pool.Insert(pos, data)
//	data, ok := pool.Get(pos)
type BlockDataCache interface {
	// Get возвращает копию данных и переносит запись в конец LRU.
	Get(pos world.ChunkPosition) (*world.ChunkBlockData, bool)

	// TryInsert добавляет запись, если её ещё нет.
	TryInsert(pos world.ChunkPosition, data *world.ChunkBlockData) bool

	// Insert добавляет или заменяет запись.
	Insert(pos world.ChunkPosition, data *world.ChunkBlockData)

	// ScheduleEdit асинхронно применяет правку блока к закешированному чанку.
	ScheduleEdit(pos vec.Vec3, desc block.Descriptor, orientation block.Orientation, extra block.ExtraData)
}

// PoolConfig содержит конфигурацию пула.
type PoolConfig struct {
	// Capacity - максимальное число чанков в пуле
	Capacity int `yaml:"pool_capacity" toml:"pool_capacity"`
}

// PoolStats содержит счётчики пула.
type PoolStats struct {
	Size         int     `json:"size"`
	Capacity     int     `json:"capacity"`
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRatio     float64 `json:"hit_ratio"`
	Evictions    int64   `json:"evictions"`
	EditsApplied int64   `json:"edits_applied"`
	EditsSkipped int64   `json:"edits_skipped"`
	PendingEdits int     `json:"pending_edits"`
}
