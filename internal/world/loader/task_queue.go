// Package loader загружает и выгружает чанки в фоновых воркерах.
package loader

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/annel0/voxel-world/internal/world"
)

// TaskKind - вид задачи загрузчика
type TaskKind uint8

const (
	TaskLoad TaskKind = iota
	TaskUnload
)

func (k TaskKind) String() string {
	switch k {
	case TaskLoad:
		return "load"
	case TaskUnload:
		return "unload"
	default:
		return fmt.Sprintf("TaskKind(%d)", uint8(k))
	}
}

// Task - ожидающая операция над позицией. Загрузка с Chunk != nil
// не требует генерации: чанк передан из отменённой выгрузки.
type Task struct {
	Kind     TaskKind
	Position world.ChunkPosition
	Chunk    *world.Chunk
}

// TaskQueue - FIFO позиций, в которой у каждой позиции не более одной задачи.
// Новые запросы к позиции с ожидающей задачей сливаются с ней и сохраняют её место.
type TaskQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	order    []world.ChunkPosition
	pending  map[world.ChunkPosition]*Task
	stopped  bool
	releaser world.ModelReleaser
	merges   int64
	onMerge  func()
}

// NewTaskQueue создаёт очередь. releaser освобождает чанки, отброшенные при слиянии.
func NewTaskQueue(releaser world.ModelReleaser) *TaskQueue {
	q := &TaskQueue{
		pending:  make(map[world.ChunkPosition]*Task),
		releaser: releaser,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// AddLoad запрашивает загрузку позиции
func (q *TaskQueue) AddLoad(pos world.ChunkPosition) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}

	if t, ok := q.pending[pos]; ok {
		// (load, load) - остаётся первая; (unload, load) - выгружаемый чанк
		// сразу удовлетворяет загрузку
		t.Kind = TaskLoad
		q.merged()
		return
	}
	q.push(&Task{Kind: TaskLoad, Position: pos})
}

// AddUnload передаёт чанк на выгрузку
func (q *TaskQueue) AddUnload(c *world.Chunk) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		c.Release(q.releaser)
		return
	}

	pos := c.Position()
	if t, ok := q.pending[pos]; ok {
		// (load, unload) - загрузка получает чанк вместо генерации;
		// (unload, unload) - остаётся второй чанк, первый освобождается
		if t.Chunk != nil && t.Chunk != c {
			t.Chunk.Release(q.releaser)
		}
		t.Chunk = c
		q.merged()
		return
	}
	q.push(&Task{Kind: TaskUnload, Position: pos, Chunk: c})
}

func (q *TaskQueue) push(t *Task) {
	q.pending[t.Position] = t
	q.order = append(q.order, t.Position)
	q.cond.Signal()
}

func (q *TaskQueue) merged() {
	atomic.AddInt64(&q.merges, 1)
	if q.onMerge != nil {
		q.onMerge()
	}
}

// Stop будит ожидающих. Уже поставленные задачи остаются доступны GetTask.
func (q *TaskQueue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// GetTask блокируется до появления задачи. После Stop возвращает оставшиеся
// задачи, затем false.
func (q *TaskQueue) GetTask() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.order) == 0 && !q.stopped {
		q.cond.Wait()
	}
	if len(q.order) == 0 {
		return Task{}, false
	}

	pos := q.order[0]
	q.order[0] = world.ChunkPosition{}
	q.order = q.order[1:]
	t := q.pending[pos]
	delete(q.pending, pos)
	return *t, true
}

// Len возвращает число ожидающих задач
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Merges возвращает число слитых запросов
func (q *TaskQueue) Merges() int64 {
	return atomic.LoadInt64(&q.merges)
}
