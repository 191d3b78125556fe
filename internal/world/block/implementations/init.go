package implementations

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/world/block"
)

// RegisterDefaults регистрирует стандартный набор блоков в каталоге
func RegisterDefaults(c *block.Catalog) error {
	groups := [][]block.Descriptor{solidBlocks(), seeThroughBlocks(), liquidBlocks()}
	for _, group := range groups {
		for _, d := range group {
			if err := c.Register(d); err != nil {
				return fmt.Errorf("регистрация стандартных блоков: %w", err)
			}
		}
	}
	return nil
}

// NewDefaultCatalog создаёт каталог со стандартными блоками
func NewDefaultCatalog() (*block.Catalog, error) {
	c := block.NewCatalog()
	if err := RegisterDefaults(c); err != nil {
		return nil, err
	}
	return c, nil
}
