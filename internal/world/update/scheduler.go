// Package update планирует отложенные обработчики блоков по игровому времени.
package update

import (
	"container/heap"
	"time"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/world/block"
)

// BlockUpdater - отложенный обработчик. Выполняется ровно один раз; продолжение
// планируется новым обработчиком.
type BlockUpdater interface {
	ExpectedUpdatingTime() int64
	Execute(m *BlockUpdateManager)
}

// FuncUpdater оборачивает функцию в обработчик
type FuncUpdater struct {
	At int64
	Fn func(m *BlockUpdateManager)
}

func (u FuncUpdater) ExpectedUpdatingTime() int64 { return u.At }

func (u FuncUpdater) Execute(m *BlockUpdateManager) {
	if u.Fn != nil {
		u.Fn(m)
	}
}

type queued struct {
	updater BlockUpdater
	at      int64
	seq     uint64
}

// updaterHeap упорядочен по времени, равные времена - по порядку добавления
type updaterHeap []queued

func (h updaterHeap) Len() int { return len(h) }
func (h updaterHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h updaterHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *updaterHeap) Push(x any)   { *h = append(*h, x.(queued)) }
func (h *updaterHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queued{}
	*h = old[:n-1]
	return item
}

// BlockUpdateManager - очередь отложенных обработчиков. Не потокобезопасен:
// работает в горутине менеджера чанков.
type BlockUpdateManager struct {
	api     block.BlockAPI
	catalog *block.Catalog
	metrics *metrics.Collectors
	logger  *logging.Logger

	queue   updaterHeap
	seq     uint64
	now     int64
	closing bool
}

// NewBlockUpdateManager создаёт планировщик над миром api
func NewBlockUpdateManager(api block.BlockAPI, catalog *block.Catalog, m *metrics.Collectors) *BlockUpdateManager {
	return &BlockUpdateManager{
		api:     api,
		catalog: catalog,
		metrics: m,
		logger:  logging.GetSchedulerLogger(),
	}
}

// API возвращает мир, над которым работают обработчики
func (m *BlockUpdateManager) API() block.BlockAPI { return m.api }

// Catalog возвращает каталог блоков
func (m *BlockUpdateManager) Catalog() *block.Catalog { return m.catalog }

// Now возвращает время текущего вызова Execute
func (m *BlockUpdateManager) Now() int64 { return m.now }

// Len возвращает число ожидающих обработчиков
func (m *BlockUpdateManager) Len() int { return len(m.queue) }

// AddUpdater ставит обработчик в очередь. Во время закрытия новые обработчики отбрасываются.
func (m *BlockUpdateManager) AddUpdater(u BlockUpdater) {
	if m.closing {
		m.logger.Trace("обработчик на %d отброшен при закрытии", u.ExpectedUpdatingTime())
		return
	}
	m.seq++
	heap.Push(&m.queue, queued{updater: u, at: u.ExpectedUpdatingTime(), seq: m.seq})
}

// Execute выполняет обработчики со временем не позже now, не более budget штук
// (budget <= 0 - без ограничения). Обработчики, добавленные во время вызова,
// подхватываются им же, если уже наступили. Возвращает число выполненных.
func (m *BlockUpdateManager) Execute(now int64, budget int) int {
	start := time.Now()
	m.now = now
	executed := 0
	for len(m.queue) > 0 && m.queue[0].at <= now {
		if budget > 0 && executed >= budget {
			break
		}
		item := heap.Pop(&m.queue).(queued)
		item.updater.Execute(m)
		executed++
	}

	m.metrics.UpdatersExecuted(executed)
	m.metrics.UpdatersPending(len(m.queue))
	m.metrics.ObserveTick(time.Since(start))
	if budget > 0 && executed == budget && len(m.queue) > 0 && m.queue[0].at <= now {
		m.logger.Debug("бюджет тика исчерпан, просрочено ещё %d", m.overdue(now))
	}
	return executed
}

func (m *BlockUpdateManager) overdue(now int64) int {
	n := 0
	for _, q := range m.queue {
		if q.at <= now {
			n++
		}
	}
	return n
}

// Close принудительно выполняет все оставшиеся обработчики в порядке времени
// с now, закреплённым на моменте закрытия. Возвращает число выполненных.
func (m *BlockUpdateManager) Close(now int64) int {
	if m.closing {
		return 0
	}
	m.closing = true
	m.now = now

	pending := make([]queued, 0, len(m.queue))
	for len(m.queue) > 0 {
		pending = append(pending, heap.Pop(&m.queue).(queued))
	}
	for _, item := range pending {
		item.updater.Execute(m)
	}

	m.metrics.UpdatersExecuted(len(pending))
	m.metrics.UpdatersPending(0)
	m.logger.Info("планировщик закрыт, выполнено при закрытии: %d", len(pending))
	return len(pending)
}
