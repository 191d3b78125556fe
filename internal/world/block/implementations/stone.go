package implementations

import "github.com/annel0/voxel-world/internal/world/block"

// Непрозрачные природные блоки
func solidBlocks() []block.Descriptor {
	return []block.Descriptor{
		&block.Description{BlockID: block.StoneBlockID, BlockName: "stone", Type: block.KindSolid},
		&block.Description{BlockID: block.DirtBlockID, BlockName: "dirt", Type: block.KindSolid},
		&block.Description{BlockID: block.GrassBlockID, BlockName: "grass", Type: block.KindSolid},
		&block.Description{BlockID: block.SandBlockID, BlockName: "sand", Type: block.KindSolid},
		&block.Description{BlockID: block.CobblestoneBlockID, BlockName: "cobblestone", Type: block.KindSolid},
		&block.Description{BlockID: block.ObsidianBlockID, BlockName: "obsidian", Type: block.KindSolid},
		// Светящийся камень светится, но свет сквозь себя не пропускает
		&block.Description{
			BlockID:   block.GlowstoneBlockID,
			BlockName: "glowstone",
			Type:      block.KindSolid,
			Emission:  block.NewBrightness(15, 13, 8, 0),
		},
	}
}
