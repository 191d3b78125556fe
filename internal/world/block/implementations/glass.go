package implementations

import "github.com/annel0/voxel-world/internal/world/block"

func seeThroughBlocks() []block.Descriptor {
	return []block.Descriptor{
		&block.Description{BlockID: block.GlassBlockID, BlockName: "glass", Type: block.KindTransparent},
		&block.Description{BlockID: block.LeavesBlockID, BlockName: "leaves", Type: block.KindHollow},
		&block.Description{
			BlockID:   block.TorchBlockID,
			BlockName: "torch",
			Type:      block.KindNonbox,
			Shape:     block.TorchBox,
			Emission:  block.NewBrightness(14, 11, 6, 0),
		},
	}
}
