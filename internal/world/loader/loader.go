package loader

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/voxel-world/internal/cache"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/annel0/voxel-world/internal/world/light"
	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/annel0/voxel-world/internal/world/loader"

// Options задаёт параметры загрузчика
type Options struct {
	// Workers - число воркеров; не меньше одного
	Workers  int
	Releaser world.ModelReleaser
	Metrics  *metrics.Collectors
}

// ChunkLoader владеет N воркерами, каждый со своей очередью. Позиция всегда
// попадает в одну и ту же очередь, поэтому загрузка и выгрузка одного чанка
// выполняются последовательно одним воркером.
type ChunkLoader struct {
	catalog   *block.Catalog
	generator world.LandGenerator
	pool      cache.BlockDataCache
	releaser  world.ModelReleaser
	metrics   *metrics.Collectors
	logger    *logging.Logger
	tracer    trace.Tracer

	queues    []*TaskQueue
	group     errgroup.Group
	skipLoads atomic.Bool
	closeOnce sync.Once

	resMu   sync.Mutex
	resCond *sync.Cond
	results []*world.Chunk
	closed  bool
}

// NewChunkLoader создаёт загрузчик и запускает воркеры
func NewChunkLoader(catalog *block.Catalog, generator world.LandGenerator, pool cache.BlockDataCache, opts Options) *ChunkLoader {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	l := &ChunkLoader{
		catalog:   catalog,
		generator: generator,
		pool:      pool,
		releaser:  opts.Releaser,
		metrics:   opts.Metrics,
		logger:    logging.GetLoaderLogger(),
		tracer:    otel.Tracer(tracerName),
		queues:    make([]*TaskQueue, workers),
	}
	l.resCond = sync.NewCond(&l.resMu)

	for i := range l.queues {
		q := NewTaskQueue(opts.Releaser)
		q.onMerge = l.metrics.LoaderMerge
		l.queues[i] = q
		l.group.Go(func() error {
			l.worker(q)
			return nil
		})
	}

	l.logger.Info("🚚 загрузчик чанков запущен, воркеров: %d", workers)
	return l
}

// Workers возвращает число воркеров
func (l *ChunkLoader) Workers() int {
	return len(l.queues)
}

// ShardOf возвращает индекс очереди, обслуживающей позицию
func (l *ChunkLoader) ShardOf(pos world.ChunkPosition) int {
	return shardOf(pos, len(l.queues))
}

func shardOf(pos world.ChunkPosition, n int) int {
	var key [16]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(int64(pos.X)))
	binary.LittleEndian.PutUint64(key[8:], uint64(int64(pos.Z)))
	return int(xxhash.Sum64(key[:]) % uint64(n))
}

// AddLoadingTask ставит загрузку в очередь владельца позиции
func (l *ChunkLoader) AddLoadingTask(pos world.ChunkPosition) {
	l.queues[l.ShardOf(pos)].AddLoad(pos)
}

// AddUnloadingTask передаёт чанк на выгрузку. Загрузчик становится его владельцем.
func (l *ChunkLoader) AddUnloadingTask(c *world.Chunk) {
	l.queues[l.ShardOf(c.Position())].AddUnload(c)
}

// SetChunkBlockDataInPool передаёт правку блока в пул
func (l *ChunkLoader) SetChunkBlockDataInPool(pos vec.Vec3, inst block.Instance) {
	l.pool.ScheduleEdit(pos, l.catalog.Get(inst.ID), inst.Orientation, inst.Extra)
}

// GetAllLoadingResults забирает все готовые чанки
func (l *ChunkLoader) GetAllLoadingResults() []*world.Chunk {
	l.resMu.Lock()
	defer l.resMu.Unlock()
	out := l.results
	l.results = nil
	return out
}

// WaitForResults блокируется, пока не появится хотя бы один результат.
// Возвращает false, если загрузчик закрыт и результатов нет.
func (l *ChunkLoader) WaitForResults() bool {
	l.resMu.Lock()
	defer l.resMu.Unlock()
	for len(l.results) == 0 && !l.closed {
		l.resCond.Wait()
	}
	return len(l.results) > 0
}

// PendingTasks возвращает суммарную длину очередей
func (l *ChunkLoader) PendingTasks() int {
	n := 0
	for _, q := range l.queues {
		n += q.Len()
	}
	return n
}

func (l *ChunkLoader) publish(c *world.Chunk) {
	l.resMu.Lock()
	l.results = append(l.results, c)
	l.resCond.Broadcast()
	l.resMu.Unlock()
}

func (l *ChunkLoader) worker(q *TaskQueue) {
	for {
		t, ok := q.GetTask()
		if !ok {
			return
		}
		l.handle(t)
	}
}

func (l *ChunkLoader) handle(t Task) {
	switch t.Kind {
	case TaskLoad:
		if l.skipLoads.Load() {
			if t.Chunk != nil {
				t.Chunk.Release(l.releaser)
			}
			return
		}
		if t.Chunk != nil {
			l.metrics.LoaderTask("forward")
			l.publish(t.Chunk)
			return
		}
		l.metrics.LoaderTask("load")
		l.publish(l.LoadChunk(context.Background(), t.Position))

	case TaskUnload:
		l.metrics.LoaderTask("unload")
		t.Chunk.Release(l.releaser)
	}
}

// LoadChunk генерирует чанк, освещает его вместе с восемью соседями и строит
// модели всех секций
func (l *ChunkLoader) LoadChunk(ctx context.Context, pos world.ChunkPosition) *world.Chunk {
	_, span := l.tracer.Start(ctx, "LoadChunk", trace.WithAttributes(
		attribute.Int("chunk.x", pos.X),
		attribute.Int("chunk.z", pos.Z),
	))
	defer span.End()
	start := time.Now()

	data := world.NewChunkBlockData()
	l.generator.Generate(pos, data)
	l.pool.Insert(pos, data.Clone())

	region := world.NewRegion(pos)
	region.SetChunk(0, 0, data, nil)
	generated := 0
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			np := pos.Offset(dx, dz)
			nd, ok := l.pool.Get(np)
			if !ok {
				nd = world.NewChunkBlockData()
				l.generator.Generate(np, nd)
				l.pool.TryInsert(np, nd.Clone())
				generated++
			}
			region.SetChunk(dx, dz, nd, nil)
		}
	}

	writes := light.NewArea(region, l.catalog).Propagate()

	c := world.NewChunk(pos, data, region.LightData(0, 0))
	for s := 0; s < world.SectionsPerChunk; s++ {
		c.SetModel(s, world.BuildSectionModel(c.Section(s), region, l.catalog), l.releaser)
	}

	span.SetAttributes(
		attribute.Int("light.writes", writes),
		attribute.Int("neighbors.generated", generated),
	)
	l.metrics.ObserveLoad(time.Since(start))
	l.logger.Trace("%s загружен за %s (свет: %d, сгенерировано соседей: %d)", pos, time.Since(start), writes, generated)
	return c
}

// Close прекращает загрузки, останавливает очереди и дожидается воркеров.
// Оставшиеся задачи выгрузки выполняются, загрузки только освобождают переданные чанки.
func (l *ChunkLoader) Close() {
	l.closeOnce.Do(func() {
		l.skipLoads.Store(true)
		for _, q := range l.queues {
			q.Stop()
		}
		_ = l.group.Wait()

		l.resMu.Lock()
		l.closed = true
		l.resCond.Broadcast()
		l.resMu.Unlock()

		l.logger.Info("загрузчик чанков остановлен")
	})
}
