package block

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrDuplicateBlock = errors.New("block: блок уже зарегистрирован")
	ErrInvalidLiquid  = errors.New("block: некорректное описание жидкости")
)

// Catalog сопоставляет ID блоков их описаниям. Создаётся один раз при старте
// и передаётся подсистеме чанков явно.
type Catalog struct {
	mu     sync.RWMutex
	byID   map[BlockID]Descriptor
	byName map[string]Descriptor
}

// NewCatalog создаёт каталог, содержащий только пустоту
func NewCatalog() *Catalog {
	c := &Catalog{
		byID:   make(map[BlockID]Descriptor),
		byName: make(map[string]Descriptor),
	}
	c.byID[VoidBlockID] = Void
	c.byName[Void.Name()] = Void
	return c
}

// Register добавляет описание блока
func (c *Catalog) Register(d Descriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[d.ID()]; exists {
		return fmt.Errorf("%w: id %d (%s)", ErrDuplicateBlock, d.ID(), d.Name())
	}
	if _, exists := c.byName[d.Name()]; exists {
		return fmt.Errorf("%w: имя %q", ErrDuplicateBlock, d.Name())
	}

	if d.Kind() == KindLiquid {
		l := d.Liquid()
		switch {
		case l == nil:
			return fmt.Errorf("%w: %s без LiquidDescriptor", ErrInvalidLiquid, d.Name())
		case l.SourceLevel < 2:
			return fmt.Errorf("%w: %s: уровень источника %d < 2", ErrInvalidLiquid, d.Name(), l.SourceLevel)
		case l.SpreadDelay <= 0:
			return fmt.Errorf("%w: %s: задержка растекания %d", ErrInvalidLiquid, d.Name(), l.SpreadDelay)
		}
		l.owner = d.ID()
	}

	c.byID[d.ID()] = d
	c.byName[d.Name()] = d
	return nil
}

// MustRegister регистрирует описание и паникует при ошибке
func (c *Catalog) MustRegister(d Descriptor) {
	if err := c.Register(d); err != nil {
		panic(err)
	}
}

// Get возвращает описание; для неизвестного ID - пустоту
func (c *Catalog) Get(id BlockID) Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d, ok := c.byID[id]; ok {
		return d
	}
	return Void
}

// Lookup возвращает описание и признак его наличия
func (c *Catalog) Lookup(id BlockID) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byID[id]
	return d, ok
}

// ByName ищет описание по имени
func (c *Catalog) ByName(name string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byName[name]
	return d, ok
}

// IDs возвращает отсортированный список зарегистрированных ID
func (c *Catalog) IDs() []BlockID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]BlockID, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len возвращает число зарегистрированных блоков
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
