package world

// ModelReleaser освобождает ресурсы модели секции на стороне рендера
type ModelReleaser interface {
	ReleaseSectionModel(m *SectionModel)
}

// RenderSet принимает модели секций для отрисовки
type RenderSet interface {
	AddSectionModel(m *SectionModel)
}

// Chunk представляет загруженный участок мира 16x128x16 блоков.
// В каждый момент у чанка один владелец: карта менеджера, задача загрузчика
// или очередь результатов. Внутренней блокировки нет.
type Chunk struct {
	position ChunkPosition
	Blocks   *ChunkBlockData
	Light    *ChunkBrightnessData
	models   [SectionsPerChunk]*SectionModel
}

// NewChunk создаёт чанк. Пустые данные заменяются новыми.
func NewChunk(pos ChunkPosition, blocks *ChunkBlockData, light *ChunkBrightnessData) *Chunk {
	if blocks == nil {
		blocks = NewChunkBlockData()
	}
	if light == nil {
		light = NewChunkBrightnessData()
	}
	return &Chunk{position: pos, Blocks: blocks, Light: light}
}

// Position возвращает координаты чанка
func (c *Chunk) Position() ChunkPosition {
	return c.position
}

// Section возвращает координату секции чанка
func (c *Chunk) Section(y int) SectionPosition {
	return SectionPosition{X: c.position.X, Y: y, Z: c.position.Z}
}

// Model возвращает модель секции или nil, если она ещё не построена
func (c *Chunk) Model(sectionY int) *SectionModel {
	if sectionY < 0 || sectionY >= SectionsPerChunk {
		return nil
	}
	return c.models[sectionY]
}

// SetModel заменяет модель секции, старая модель освобождается
func (c *Chunk) SetModel(sectionY int, m *SectionModel, r ModelReleaser) {
	if old := c.models[sectionY]; old != nil && old != m && r != nil {
		r.ReleaseSectionModel(old)
	}
	c.models[sectionY] = m
}

// Release освобождает все модели чанка
func (c *Chunk) Release(r ModelReleaser) {
	for i, m := range c.models {
		if m != nil && r != nil {
			r.ReleaseSectionModel(m)
		}
		c.models[i] = nil
	}
}
