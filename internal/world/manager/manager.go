// Package manager владеет картой загруженных чанков и является единственной
// точкой изменения мира. Все методы ChunkManager вызываются из одной горутины.
package manager

import (
	"errors"
	"fmt"
	"sort"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/annel0/voxel-world/internal/world/light"
	"github.com/brentp/intintmap"
)

// ErrInvalidDistances возвращается, если не выполнено render < load < unload
var ErrInvalidDistances = errors.New("manager: требуется render < load < unload")

// ChunkSource - загрузчик, которому менеджер отдаёт задачи.
// Реализуется loader.ChunkLoader.
type ChunkSource interface {
	AddLoadingTask(pos world.ChunkPosition)
	AddUnloadingTask(c *world.Chunk)
	SetChunkBlockDataInPool(pos vec.Vec3, inst block.Instance)
	GetAllLoadingResults() []*world.Chunk
	// WaitForResults блокируется до появления результата; false - источник закрыт
	WaitForResults() bool
}

// Options задаёт дальности в чанках
type Options struct {
	RenderDistance int
	LoadDistance   int
	UnloadDistance int
	Releaser       world.ModelReleaser
	Metrics        *metrics.Collectors
}

// ChunkManager - авторитетная карта загруженных чанков
type ChunkManager struct {
	catalog  *block.Catalog
	source   ChunkSource
	releaser world.ModelReleaser
	metrics  *metrics.Collectors
	logger   *logging.Logger

	renderDistance int
	loadDistance   int
	unloadDistance int

	chunks    map[world.ChunkPosition]*world.Chunk
	requested map[world.ChunkPosition]struct{}
	centre    world.ChunkPosition
	hasCentre bool

	// Позиция, которую сейчас ждёт ensureResident. Её результат принимается
	// даже за пределами окна выгрузки.
	pinned    world.ChunkPosition
	hasPinned bool

	stale map[world.SectionPosition]struct{}

	lightQueue  []vec.Vec3
	lightQueued *intintmap.Map
}

// NewChunkManager создаёт менеджер
func NewChunkManager(catalog *block.Catalog, source ChunkSource, opts Options) (*ChunkManager, error) {
	if opts.RenderDistance < 0 || opts.RenderDistance >= opts.LoadDistance || opts.LoadDistance >= opts.UnloadDistance {
		return nil, fmt.Errorf("%w: %d, %d, %d", ErrInvalidDistances,
			opts.RenderDistance, opts.LoadDistance, opts.UnloadDistance)
	}
	return &ChunkManager{
		catalog:        catalog,
		source:         source,
		releaser:       opts.Releaser,
		metrics:        opts.Metrics,
		logger:         logging.GetManagerLogger(),
		renderDistance: opts.RenderDistance,
		loadDistance:   opts.LoadDistance,
		unloadDistance: opts.UnloadDistance,
		chunks:         make(map[world.ChunkPosition]*world.Chunk),
		requested:      make(map[world.ChunkPosition]struct{}),
		stale:          make(map[world.SectionPosition]struct{}),
		lightQueued:    intintmap.New(1024, 0.6),
	}, nil
}

// Centre возвращает текущий центральный чанк
func (m *ChunkManager) Centre() world.ChunkPosition {
	return m.centre
}

// ResidentChunks возвращает число загруженных чанков
func (m *ChunkManager) ResidentChunks() int {
	return len(m.chunks)
}

// IsResident сообщает, загружен ли чанк
func (m *ChunkManager) IsResident(pos world.ChunkPosition) bool {
	_, ok := m.chunks[pos]
	return ok
}

// Chunk возвращает загруженный чанк без ожидания
func (m *ChunkManager) Chunk(pos world.ChunkPosition) (*world.Chunk, bool) {
	c, ok := m.chunks[pos]
	return c, ok
}

// SetCentreChunk сдвигает окно загрузки. Недостающие чанки запрашиваются
// от ближних к дальним, чанки за дальностью выгрузки сразу уходят загрузчику.
func (m *ChunkManager) SetCentreChunk(pos world.ChunkPosition) {
	if m.hasCentre && pos == m.centre {
		return
	}
	m.centre = pos
	m.hasCentre = true

	load := m.loadDistance * m.loadDistance
	var wanted []world.ChunkPosition
	for dx := -m.loadDistance; dx <= m.loadDistance; dx++ {
		for dz := -m.loadDistance; dz <= m.loadDistance; dz++ {
			if dx*dx+dz*dz > load {
				continue
			}
			p := pos.Offset(dx, dz)
			if _, ok := m.chunks[p]; ok {
				continue
			}
			if _, ok := m.requested[p]; ok {
				continue
			}
			wanted = append(wanted, p)
		}
	}
	sort.Slice(wanted, func(i, j int) bool {
		di, dj := wanted[i].DistanceSq(pos), wanted[j].DistanceSq(pos)
		if di != dj {
			return di < dj
		}
		return wanted[i].Less(wanted[j])
	})
	for _, p := range wanted {
		m.request(p)
	}

	unloaded := 0
	for p, c := range m.chunks {
		if !m.withinUnload(p) {
			delete(m.chunks, p)
			m.dropStale(p)
			m.source.AddUnloadingTask(c)
			unloaded++
		}
	}
	m.metrics.ResidentChunks(len(m.chunks))
	m.logger.Debug("центр %s: запрошено %d, выгружено %d", pos, len(wanted), unloaded)
}

func (m *ChunkManager) request(p world.ChunkPosition) {
	m.requested[p] = struct{}{}
	m.source.AddLoadingTask(p)
}

func (m *ChunkManager) withinUnload(p world.ChunkPosition) bool {
	return !m.hasCentre || p.DistanceSq(m.centre) <= m.unloadDistance*m.unloadDistance
}

func (m *ChunkManager) dropStale(p world.ChunkPosition) {
	for y := 0; y < world.SectionsPerChunk; y++ {
		delete(m.stale, world.SectionPosition{X: p.X, Y: y, Z: p.Z})
	}
}

// UpdateChunkData принимает готовые чанки загрузчика. Результаты за окном
// выгрузки возвращаются загрузчику. Возвращает true, если карта изменилась.
func (m *ChunkManager) UpdateChunkData() bool {
	changed := false
	for _, c := range m.source.GetAllLoadingResults() {
		if m.accept(c) {
			changed = true
		}
	}
	if changed {
		m.metrics.ResidentChunks(len(m.chunks))
	}
	return changed
}

func (m *ChunkManager) accept(c *world.Chunk) bool {
	pos := c.Position()
	delete(m.requested, pos)

	if _, ok := m.chunks[pos]; ok {
		m.logger.Warn("повторный результат для %s, отдаём на выгрузку", pos)
		m.source.AddUnloadingTask(c)
		return false
	}
	if !m.withinUnload(pos) && !(m.hasPinned && m.pinned == pos) {
		m.source.AddUnloadingTask(c)
		return false
	}
	m.chunks[pos] = c
	return true
}

// ensureResident блокируется, пока чанк не окажется в карте.
// Возвращает nil, только если загрузчик закрыт.
func (m *ChunkManager) ensureResident(pos world.ChunkPosition) *world.Chunk {
	if c, ok := m.chunks[pos]; ok {
		return c
	}
	if _, ok := m.requested[pos]; !ok {
		m.request(pos)
	}

	prevPinned, hadPinned := m.pinned, m.hasPinned
	m.pinned, m.hasPinned = pos, true
	defer func() { m.pinned, m.hasPinned = prevPinned, hadPinned }()

	for {
		m.UpdateChunkData()
		if c, ok := m.chunks[pos]; ok {
			return c
		}
		if !m.source.WaitForResults() {
			m.logger.Warn("загрузчик закрыт, чанк %s недоступен", pos)
			return nil
		}
	}
}

func (m *ChunkManager) locate(pos vec.Vec3) (*world.Chunk, vec.Vec3) {
	cp, local := world.DecomposeGlobalBlockByChunk(pos)
	return m.ensureResident(cp), local
}

// peek ищет чанк без загрузки
func (m *ChunkManager) peek(pos vec.Vec3) (*world.Chunk, vec.Vec3, bool) {
	cp, local := world.DecomposeGlobalBlockByChunk(pos)
	c, ok := m.chunks[cp]
	return c, local, ok
}

// GetBlockID возвращает ID блока; вне высоты мира - пустота
func (m *ChunkManager) GetBlockID(pos vec.Vec3) block.BlockID {
	if !world.IsValidY(pos.Y) {
		return block.VoidBlockID
	}
	c, local := m.locate(pos)
	if c == nil {
		return block.VoidBlockID
	}
	return c.Blocks.ID(local)
}

// GetBlockDesc возвращает описание блока
func (m *ChunkManager) GetBlockDesc(pos vec.Vec3) block.Descriptor {
	return m.catalog.Get(m.GetBlockID(pos))
}

// GetBlock возвращает состояние блока. Extra принадлежит чанку.
func (m *ChunkManager) GetBlock(pos vec.Vec3) block.Instance {
	if !world.IsValidY(pos.Y) {
		return block.Instance{}
	}
	c, local := m.locate(pos)
	if c == nil {
		return block.Instance{}
	}
	return c.Blocks.Instance(local)
}

// GetBlockBrightness возвращает освещённость: выше мира - небо, ниже - темнота
func (m *ChunkManager) GetBlockBrightness(pos vec.Vec3) block.Brightness {
	switch {
	case pos.Y >= world.ChunkSizeY:
		return block.SkyBrightness
	case pos.Y < 0:
		return block.Brightness{}
	}
	c, local := m.locate(pos)
	if c == nil {
		return block.Brightness{}
	}
	return c.Light.Get(local)
}

// SetBlockID записывает блок с необязательными дополнительными данными
func (m *ChunkManager) SetBlockID(pos vec.Vec3, id block.BlockID, orientation block.Orientation, extra ...block.ExtraData) {
	inst := block.Instance{ID: id, Orientation: orientation}
	if len(extra) > 0 {
		inst.Extra = extra[0]
	}
	m.SetBlock(pos, inst)
}

// SetBlock записывает блок, обновляет карту высот, передаёт правку в пул,
// ставит затронутые ячейки в очередь освещения и помечает 27 окрестных
// ячеек как требующие перестройки моделей. Запись вне высоты мира игнорируется.
func (m *ChunkManager) SetBlock(pos vec.Vec3, inst block.Instance) {
	if !world.IsValidY(pos.Y) {
		return
	}
	c, local := m.locate(pos)
	if c == nil {
		return
	}

	before := c.Blocks.Height(local.X, local.Z)
	c.Blocks.Set(local, m.catalog.Get(inst.ID), inst.Orientation, inst.Extra)
	after := c.Blocks.Height(local.X, local.Z)

	m.source.SetChunkBlockDataInPool(pos, inst)

	m.EnqueueLightUpdate(pos)
	// Ячейки колонки, для которых изменилась видимость неба
	lo, hi := before, after
	if lo > hi {
		lo, hi = hi, lo
	}
	for y := lo + 1; y <= hi; y++ {
		m.EnqueueLightUpdate(vec.Vec3{X: pos.X, Y: y, Z: pos.Z})
	}

	pos.ForEachInCube(m.markStale)
}

func (m *ChunkManager) markStale(p vec.Vec3) {
	sp := world.SectionOf(p)
	if sp.IsValid() {
		m.stale[sp] = struct{}{}
	}
}

// EnqueueLightUpdate ставит позицию в очередь пересчёта освещения
func (m *ChunkManager) EnqueueLightUpdate(pos vec.Vec3) {
	if !world.IsValidY(pos.Y) {
		return
	}
	k := world.PackBlockPos(pos)
	if _, ok := m.lightQueued.Get(k); ok {
		return
	}
	m.lightQueued.Put(k, 1)
	m.lightQueue = append(m.lightQueue, pos)
}

// PendingLightUpdates возвращает длину очереди освещения
func (m *ChunkManager) PendingLightUpdates() int {
	return len(m.lightQueue)
}

// IsLightPending сообщает, стоит ли позиция в очереди освещения
func (m *ChunkManager) IsLightPending(pos vec.Vec3) bool {
	_, ok := m.lightQueued.Get(world.PackBlockPos(pos))
	return ok
}

// UpdateLight распространяет свет от всех накопленных позиций.
// Возвращает число записей освещённости.
func (m *ChunkManager) UpdateLight() int {
	if len(m.lightQueue) == 0 {
		return 0
	}
	queue := m.lightQueue
	m.lightQueue = nil
	m.lightQueued = intintmap.New(1024, 0.6)

	writes := light.Propagate(lightField{m}, queue, func(p vec.Vec3) {
		// Грани соседей используют свет этой ячейки
		m.markStale(p)
		for _, n := range p.Neighbors6() {
			m.markStale(n)
		}
	})
	m.metrics.LightWrites(writes)
	return writes
}

// StaleSections возвращает отсортированный список секций, ждущих перестройки
func (m *ChunkManager) StaleSections() []world.SectionPosition {
	out := make([]world.SectionPosition, 0, len(m.stale))
	for sp := range m.stale {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.Y < b.Y
	})
	return out
}

// UpdateChunkModels перестраивает модели устаревших секций загруженных чанков.
// Соседние чанки при необходимости дожидаются загрузки.
func (m *ChunkManager) UpdateChunkModels() bool {
	if len(m.stale) == 0 {
		return false
	}
	sections := m.StaleSections()
	m.stale = make(map[world.SectionPosition]struct{})

	rebuilt := 0
	var region *world.Region
	for _, sp := range sections {
		c, ok := m.chunks[sp.Chunk()]
		if !ok {
			continue
		}
		if region == nil || region.Center != sp.Chunk() {
			region = m.regionAround(sp.Chunk())
			if region == nil {
				break
			}
		}
		c.SetModel(sp.Y, world.BuildSectionModel(sp, region, m.catalog), m.releaser)
		rebuilt++
	}
	m.metrics.ModelsRebuilt(rebuilt)
	return rebuilt > 0
}

// regionAround собирает свежую окрестность 3x3; nil, если загрузчик закрыт
func (m *ChunkManager) regionAround(center world.ChunkPosition) *world.Region {
	region := world.NewRegion(center)
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			c := m.ensureResident(center.Offset(dx, dz))
			if c == nil {
				return nil
			}
			region.SetChunk(dx, dz, c.Blocks, c.Light)
		}
	}
	return region
}

// FillRenderer передаёт модели секций чанков в пределах дальности отрисовки
func (m *ChunkManager) FillRenderer(rs world.RenderSet) int {
	positions := make([]world.ChunkPosition, 0, len(m.chunks))
	render := m.renderDistance * m.renderDistance
	for p := range m.chunks {
		if p.DistanceSq(m.centre) <= render {
			positions = append(positions, p)
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Less(positions[j]) })

	n := 0
	for _, p := range positions {
		c := m.chunks[p]
		for y := 0; y < world.SectionsPerChunk; y++ {
			if model := c.Model(y); model != nil {
				rs.AddSectionModel(model)
				n++
			}
		}
	}
	return n
}

// UnloadAll отдаёт все загруженные чанки загрузчику
func (m *ChunkManager) UnloadAll() {
	for p, c := range m.chunks {
		delete(m.chunks, p)
		m.source.AddUnloadingTask(c)
	}
	m.stale = make(map[world.SectionPosition]struct{})
	m.metrics.ResidentChunks(0)
}
