// Package app собирает подсистемы мира в один управляемый объект.
package app

import (
	"fmt"
	"sync/atomic"

	"github.com/annel0/voxel-world/internal/cache"
	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/annel0/voxel-world/internal/world/block/implementations"
	"github.com/annel0/voxel-world/internal/world/loader"
	"github.com/annel0/voxel-world/internal/world/manager"
	"github.com/annel0/voxel-world/internal/world/update"
	"github.com/google/uuid"
)

// TickStats описывает работу одного тика
type TickStats struct {
	Tick          int64
	ChunksChanged bool
	Executed      int
	LightWrites   int
	ModelsRebuilt bool
}

// Stats - сводка состояния для логов и отладки
type Stats struct {
	InstanceID string
	Tick       int64
	metrics.Snapshot
	Pool cache.PoolStats
}

// Runtime владеет пулом, загрузчиком, менеджером чанков и планировщиком.
// Все методы, кроме Snapshot, вызываются из одной горутины.
type Runtime struct {
	id      uuid.UUID
	cfg     *config.Config
	catalog *block.Catalog
	metrics *metrics.Collectors
	logger  *logging.Logger

	pool      *cache.ChunkBlockDataPool
	loader    *loader.ChunkLoader
	manager   *manager.ChunkManager
	scheduler *update.BlockUpdateManager

	tick     int64
	closed   bool
	resident atomic.Int64
	pending  atomic.Int64
}

// NewRuntime создаёт мир по конфигурации. m и releaser могут быть nil.
func NewRuntime(cfg *config.Config, m *metrics.Collectors, releaser world.ModelReleaser) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog, err := implementations.NewDefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("каталог блоков: %w", err)
	}
	gen, err := world.NewGenerator(cfg.World.Generator, catalog, cfg.World.Seed, cfg.World.FlatHeight)
	if err != nil {
		return nil, fmt.Errorf("генератор: %w", err)
	}

	r := &Runtime{
		id:      uuid.New(),
		cfg:     cfg,
		catalog: catalog,
		metrics: m,
		logger:  logging.GetRuntimeLogger(),
	}

	r.pool = cache.NewChunkBlockDataPool(cfg.Loader.PoolConfig(), m)
	r.loader = loader.NewChunkLoader(catalog, gen, r.pool, loader.Options{
		Workers:  cfg.Loader.GetThreads(),
		Releaser: releaser,
		Metrics:  m,
	})
	r.manager, err = manager.NewChunkManager(catalog, r.loader, manager.Options{
		RenderDistance: cfg.World.RenderDistance,
		LoadDistance:   cfg.World.LoadDistance,
		UnloadDistance: cfg.World.UnloadDistance,
		Releaser:       releaser,
		Metrics:        m,
	})
	if err != nil {
		r.loader.Close()
		r.pool.Close()
		return nil, err
	}
	r.scheduler = update.NewBlockUpdateManager(r.manager, catalog, m)

	r.logger.Info("🌍 мир %s создан: генератор %s, сид %d, воркеров %d",
		r.id, cfg.World.Generator, cfg.World.Seed, r.loader.Workers())
	return r, nil
}

// ID возвращает идентификатор экземпляра
func (r *Runtime) ID() uuid.UUID { return r.id }

func (r *Runtime) Catalog() *block.Catalog               { return r.catalog }
func (r *Runtime) Manager() *manager.ChunkManager        { return r.manager }
func (r *Runtime) Scheduler() *update.BlockUpdateManager { return r.scheduler }
func (r *Runtime) Pool() *cache.ChunkBlockDataPool       { return r.pool }

// Now возвращает номер последнего тика
func (r *Runtime) Now() int64 { return r.tick }

// MoveViewer переносит центр загрузки в чанк, содержащий pos
func (r *Runtime) MoveViewer(pos vec.Vec3) {
	if r.closed {
		return
	}
	r.manager.SetCentreChunk(world.ChunkOf(pos))
}

// EditBlock записывает блок и заново запускает жидкости вокруг него.
// Возвращает число запланированных обработчиков.
func (r *Runtime) EditBlock(pos vec.Vec3, inst block.Instance) int {
	if r.closed {
		return 0
	}
	r.manager.SetBlock(pos, inst)

	armed := 0
	if update.AddUpdaterForNeighborhood(r.scheduler, pos) {
		armed++
	}
	for _, n := range pos.Neighbors6() {
		if update.AddUpdaterForNeighborhood(r.scheduler, n) {
			armed++
		}
	}
	r.pending.Store(int64(r.scheduler.Len()))
	return armed
}

// Tick продвигает игровое время: принимает готовые чанки, выполняет
// наступившие обработчики, распространяет свет и перестраивает модели
func (r *Runtime) Tick() TickStats {
	if r.closed {
		return TickStats{Tick: r.tick}
	}
	r.tick++
	st := TickStats{Tick: r.tick}

	st.ChunksChanged = r.manager.UpdateChunkData()
	st.Executed = r.scheduler.Execute(r.tick, r.cfg.Scheduler.TickBudget)
	st.LightWrites = r.manager.UpdateLight()
	st.ModelsRebuilt = r.manager.UpdateChunkModels()

	r.resident.Store(int64(r.manager.ResidentChunks()))
	r.pending.Store(int64(r.scheduler.Len()))
	return st
}

// FillRenderer передаёт модели видимых секций
func (r *Runtime) FillRenderer(rs world.RenderSet) int {
	return r.manager.FillRenderer(rs)
}

// Snapshot реализует metrics.StatsProvider; безопасен из любой горутины
func (r *Runtime) Snapshot() metrics.Snapshot {
	return metrics.Snapshot{
		ResidentChunks:  int(r.resident.Load()),
		PendingUpdaters: int(r.pending.Load()),
		PoolSize:        r.pool.Len(),
	}
}

// Stats возвращает сводку состояния
func (r *Runtime) Stats() Stats {
	return Stats{
		InstanceID: r.id.String(),
		Tick:       r.tick,
		Snapshot:   r.Snapshot(),
		Pool:       r.pool.Stats(),
	}
}

// Close выполняет оставшиеся обработчики, выгружает чанки и останавливает
// загрузчик и пул. Повторный вызов ничего не делает.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	forced := r.scheduler.Close(r.tick)
	r.closed = true
	r.manager.UnloadAll()
	r.loader.Close()
	r.pool.Close()

	r.resident.Store(0)
	r.pending.Store(0)
	r.logger.Info("мир %s остановлен на тике %d, обработчиков при закрытии: %d", r.id, r.tick, forced)
}
