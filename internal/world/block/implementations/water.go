package implementations

import "github.com/annel0/voxel-world/internal/world/block"

const (
	WaterSourceLevel = 8
	WaterSpreadDelay = 5
	LavaSourceLevel  = 4
	LavaSpreadDelay  = 30
)

// waterLiquid - вода растекается быстро и далеко. При встрече с лавой
// источник лавы застывает в обсидиан, поток - в булыжник.
func waterLiquid() *block.LiquidDescriptor {
	return &block.LiquidDescriptor{
		SourceLevel: WaterSourceLevel,
		SpreadDelay: WaterSpreadDelay,
		Reactions: []block.Reaction{{
			With: block.LavaBlockID,
			Result: func(_, isLavaSource bool) block.Instance {
				if isLavaSource {
					return block.Instance{ID: block.ObsidianBlockID}
				}
				return block.Instance{ID: block.CobblestoneBlockID}
			},
		}},
	}
}

// lavaLiquid - лава медленная. Правило реакции с водой не нужно: у воды ID меньше,
// и реакцию всегда разрешает она.
func lavaLiquid() *block.LiquidDescriptor {
	return &block.LiquidDescriptor{
		SourceLevel: LavaSourceLevel,
		SpreadDelay: LavaSpreadDelay,
	}
}

func liquidBlocks() []block.Descriptor {
	return []block.Descriptor{
		&block.Description{
			BlockID:   block.WaterBlockID,
			BlockName: "water",
			Type:      block.KindLiquid,
			Fluid:     waterLiquid(),
		},
		&block.Description{
			BlockID:   block.LavaBlockID,
			BlockName: "lava",
			Type:      block.KindLiquid,
			Emission:  block.NewBrightness(15, 9, 3, 0),
			Fluid:     lavaLiquid(),
		},
	}
}
