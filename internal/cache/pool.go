package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// DefaultPoolCapacity используется при нулевой ёмкости в конфигурации
const DefaultPoolCapacity = 256

type poolEntry struct {
	pos  world.ChunkPosition
	data *world.ChunkBlockData
}

// editItem представляет отложенную правку блока.
type editItem struct {
	pos         vec.Vec3
	desc        block.Descriptor
	orientation block.Orientation
	extra       block.ExtraData
}

// ChunkBlockDataPool - ограниченный LRU-кеш блочных данных чанков (без освещения).
//
// Особенности:
// - все операции с картой выполняются под одним мьютексом
// - правки от менеджера применяются отдельной горутиной, не блокируя вызывающего
// - Close дожидается применения всех поставленных правок
type ChunkBlockDataPool struct {
	mu       sync.Mutex
	capacity int
	entries  map[world.ChunkPosition]*list.Element
	order    *list.List // front - LRU, back - MRU

	// Очередь правок
	editMu   sync.Mutex
	editCond *sync.Cond
	edits    []editItem
	stopping bool
	editWg   sync.WaitGroup

	metrics *metrics.Collectors
	logger  *logging.Logger

	hits         int64
	misses       int64
	evictions    int64
	editsApplied int64
	editsSkipped int64
}

// NewChunkBlockDataPool создаёт пул и запускает горутину применения правок.
func NewChunkBlockDataPool(cfg PoolConfig, m *metrics.Collectors) *ChunkBlockDataPool {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}

	p := &ChunkBlockDataPool{
		capacity: capacity,
		entries:  make(map[world.ChunkPosition]*list.Element, capacity+1),
		order:    list.New(),
		metrics:  m,
		logger:   logging.GetPoolLogger(),
	}
	p.editCond = sync.NewCond(&p.editMu)

	p.editWg.Add(1)
	go p.editLoop()

	p.logger.Debug("пул блочных данных создан, ёмкость %d", capacity)
	return p
}

// Capacity возвращает максимальное число записей
func (p *ChunkBlockDataPool) Capacity() int {
	return p.capacity
}

// Len возвращает текущее число записей
func (p *ChunkBlockDataPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Len()
}

// Contains проверяет наличие записи без изменения порядка LRU
func (p *ChunkBlockDataPool) Contains(pos world.ChunkPosition) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[pos]
	return ok
}

// Get возвращает копию данных и переносит запись в конец LRU.
func (p *ChunkBlockDataPool) Get(pos world.ChunkPosition) (*world.ChunkBlockData, bool) {
	p.mu.Lock()
	el, ok := p.entries[pos]
	if !ok {
		p.mu.Unlock()
		atomic.AddInt64(&p.misses, 1)
		p.metrics.PoolMiss()
		return nil, false
	}
	p.order.MoveToBack(el)
	data := el.Value.(*poolEntry).data.Clone()
	p.mu.Unlock()

	atomic.AddInt64(&p.hits, 1)
	p.metrics.PoolHit()
	return data, true
}

// TryInsert добавляет запись, если её ещё нет. Возвращает false без изменений, если позиция уже есть.
func (p *ChunkBlockDataPool) TryInsert(pos world.ChunkPosition, data *world.ChunkBlockData) bool {
	p.mu.Lock()
	if _, ok := p.entries[pos]; ok {
		p.mu.Unlock()
		return false
	}
	p.entries[pos] = p.order.PushBack(&poolEntry{pos: pos, data: data})
	evicted, size := p.evictLocked()
	p.mu.Unlock()

	p.afterInsert(evicted, size)
	return true
}

// Insert добавляет или заменяет запись и переносит её в конец LRU.
func (p *ChunkBlockDataPool) Insert(pos world.ChunkPosition, data *world.ChunkBlockData) {
	p.mu.Lock()
	if el, ok := p.entries[pos]; ok {
		el.Value.(*poolEntry).data = data
		p.order.MoveToBack(el)
	} else {
		p.entries[pos] = p.order.PushBack(&poolEntry{pos: pos, data: data})
	}
	evicted, size := p.evictLocked()
	p.mu.Unlock()

	p.afterInsert(evicted, size)
}

// WithEntry выполняет fn под блокировкой пула. Ссылка на данные не должна покидать fn.
// Возвращает, была ли запись в пуле.
func (p *ChunkBlockDataPool) WithEntry(pos world.ChunkPosition, fn func(*world.ChunkBlockData)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.entries[pos]
	if !ok {
		return false
	}
	fn(el.Value.(*poolEntry).data)
	return true
}

func (p *ChunkBlockDataPool) evictLocked() (evicted, size int) {
	for p.order.Len() > p.capacity {
		front := p.order.Front()
		p.order.Remove(front)
		delete(p.entries, front.Value.(*poolEntry).pos)
		evicted++
	}
	return evicted, p.order.Len()
}

func (p *ChunkBlockDataPool) afterInsert(evicted, size int) {
	if evicted > 0 {
		atomic.AddInt64(&p.evictions, int64(evicted))
		p.metrics.PoolEvicted(evicted)
	}
	p.metrics.PoolSize(size)
}

// ScheduleEdit ставит правку в очередь и сразу возвращает управление.
// extra копируется; nil для блока с дополнительными данными даёт данные по умолчанию.
// После Close правки отбрасываются.
func (p *ChunkBlockDataPool) ScheduleEdit(pos vec.Vec3, desc block.Descriptor, orientation block.Orientation, extra block.ExtraData) {
	p.editMu.Lock()
	defer p.editMu.Unlock()
	if p.stopping {
		p.logger.Warn("правка %v после остановки пула отброшена", pos)
		return
	}
	if extra != nil {
		extra = extra.Clone()
	}
	p.edits = append(p.edits, editItem{pos: pos, desc: desc, orientation: orientation, extra: extra})
	p.editCond.Signal()
}

func (p *ChunkBlockDataPool) editLoop() {
	defer p.editWg.Done()
	for {
		p.editMu.Lock()
		for len(p.edits) == 0 && !p.stopping {
			p.editCond.Wait()
		}
		if len(p.edits) == 0 && p.stopping {
			p.editMu.Unlock()
			return
		}
		batch := p.edits
		p.edits = nil
		p.editMu.Unlock()

		for _, e := range batch {
			p.applyEdit(e)
		}
	}
}

func (p *ChunkBlockDataPool) applyEdit(e editItem) {
	cp, local := world.DecomposeGlobalBlockByChunk(e.pos)
	applied := p.WithEntry(cp, func(d *world.ChunkBlockData) {
		d.Set(local, e.desc, e.orientation, e.extra)
	})
	if applied {
		atomic.AddInt64(&p.editsApplied, 1)
	} else {
		atomic.AddInt64(&p.editsSkipped, 1)
	}
	p.metrics.PoolEdit(applied)
}

// Close применяет оставшиеся правки и останавливает горутину. Повторный вызов безопасен.
func (p *ChunkBlockDataPool) Close() {
	p.editMu.Lock()
	if p.stopping {
		p.editMu.Unlock()
		return
	}
	p.stopping = true
	pending := len(p.edits)
	p.editCond.Broadcast()
	p.editMu.Unlock()

	p.editWg.Wait()
	p.logger.Debug("пул блочных данных остановлен, применено оставшихся правок: %d", pending)
}

// Stats возвращает снимок счётчиков
func (p *ChunkBlockDataPool) Stats() PoolStats {
	p.editMu.Lock()
	pending := len(p.edits)
	p.editMu.Unlock()

	s := PoolStats{
		Size:         p.Len(),
		Capacity:     p.capacity,
		Hits:         atomic.LoadInt64(&p.hits),
		Misses:       atomic.LoadInt64(&p.misses),
		Evictions:    atomic.LoadInt64(&p.evictions),
		EditsApplied: atomic.LoadInt64(&p.editsApplied),
		EditsSkipped: atomic.LoadInt64(&p.editsSkipped),
		PendingEdits: pending,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}

var _ BlockDataCache = (*ChunkBlockDataPool)(nil)
