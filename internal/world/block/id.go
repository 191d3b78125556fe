package block

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID блоков стандартного каталога
const (
	VoidBlockID        BlockID = iota // 0 - пустота, всегда зарегистрирована
	StoneBlockID                      // 1
	DirtBlockID                       // 2
	GrassBlockID                      // 3
	SandBlockID                       // 4
	WaterBlockID                      // 5
	LavaBlockID                       // 6
	GlassBlockID                      // 7
	LeavesBlockID                     // 8
	TorchBlockID                      // 9
	GlowstoneBlockID                  // 10
	CobblestoneBlockID                // 11
	ObsidianBlockID                   // 12
)
