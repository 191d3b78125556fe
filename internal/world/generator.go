package world

import (
	"fmt"
	"math/rand"

	"github.com/annel0/voxel-world/internal/util"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// LandGenerator заполняет блочные данные нового чанка.
// Реализации должны быть безопасны для вызова из нескольких горутин.
type LandGenerator interface {
	Generate(pos ChunkPosition, data *ChunkBlockData)
}

// BiomeType представляет тип биома
type BiomeType int

const (
	BiomePlains BiomeType = iota
	BiomeDesert
	BiomeForest
	BiomeMountains
	BiomeWater
)

// Константы высот для генерации (доля от диапазона высот)
const (
	ShallowWaterMax = 0.30 // Ниже - дно водоёма
	MountainStart   = 0.80 // Выше - горы
)

// Границы рельефа в блоках
const (
	MinTerrainHeight = 32
	MaxTerrainHeight = 96
	SeaLevel         = MinTerrainHeight + (MaxTerrainHeight-MinTerrainHeight)*3/10 // доля ShallowWaterMax
)

// FlatGenerator строит плоский мир: камень, земля и трава до высоты Height
type FlatGenerator struct {
	Catalog *block.Catalog
	Height  int
}

// NewFlatGenerator создаёт плоский генератор
func NewFlatGenerator(catalog *block.Catalog, height int) *FlatGenerator {
	return &FlatGenerator{Catalog: catalog, Height: height}
}

func (g *FlatGenerator) Generate(_ ChunkPosition, data *ChunkBlockData) {
	for z := 0; z < ChunkSizeZ; z++ {
		for x := 0; x < ChunkSizeX; x++ {
			fillColumn(data, g.Catalog, x, z, g.Height, BiomePlains, nil)
		}
	}
}

// heightSource возвращает значение шума от 0 до 1
type heightSource func(x, z float64) float64

// NoiseGenerator генерирует рельеф по двумерному шуму: высота колонки и биом
// берутся из двух независимых полей
type NoiseGenerator struct {
	Catalog       *block.Catalog
	Seed          int64
	NoiseScale    float64 // Масштаб основного шума (высота)
	BiomeScale    float64 // Масштаб шума биомов
	ForestDensity float64 // Плотность лесов (от 0 до 1)

	height heightSource
	biome  heightSource
}

// NewPerlinGenerator создаёт генератор на шуме Перлина
func NewPerlinGenerator(catalog *block.Catalog, seed int64) *NoiseGenerator {
	h := util.NewPerlinNoise(seed)
	b := util.NewPerlinNoise(seed + 42)
	return &NoiseGenerator{
		Catalog:       catalog,
		Seed:          seed,
		NoiseScale:    0.02, // Настройка сглаженности ландшафта
		BiomeScale:    0.01, // Настройка размера биомов
		ForestDensity: 0.05, // 5% шанс появления деревьев на равнинах
		height:        h.Noise2D,
		biome:         b.Noise2D,
	}
}

// NewSimplexGenerator создаёт генератор на фрактальном шуме OpenSimplex
func NewSimplexGenerator(catalog *block.Catalog, seed int64) *NoiseGenerator {
	h := util.NewSimplexNoise(seed)
	b := util.NewSimplexNoise(seed + 42)
	b.Octaves = 2
	return &NoiseGenerator{
		Catalog:       catalog,
		Seed:          seed,
		NoiseScale:    0.01,
		BiomeScale:    0.005,
		ForestDensity: 0.05,
		height:        h.Fractal2D,
		biome:         b.Fractal2D,
	}
}

// Generate генерирует чанк по его координатам
func (g *NoiseGenerator) Generate(pos ChunkPosition, data *ChunkBlockData) {
	// Для каждого чанка создаем уникальный сид на основе глобального сида и координат
	chunkSeed := g.Seed + int64(pos.X*31) + int64(pos.Z*17)
	rng := rand.New(rand.NewSource(chunkSeed))

	origin := pos.Origin()
	for z := 0; z < ChunkSizeZ; z++ {
		for x := 0; x < ChunkSizeX; x++ {
			gx := float64(origin.X + x)
			gz := float64(origin.Z + z)

			height := g.height(gx*g.NoiseScale, gz*g.NoiseScale)
			biomeValue := g.biome(gx*g.BiomeScale, gz*g.BiomeScale)
			biome := getBiomeType(height, biomeValue)

			top := MinTerrainHeight + int(height*float64(MaxTerrainHeight-MinTerrainHeight))
			fillColumn(data, g.Catalog, x, z, top, biome, rng)

			if x > 0 && x < ChunkSizeX-1 && z > 0 && z < ChunkSizeZ-1 {
				if biome == BiomeForest && rng.Float64() < 0.15 || biome == BiomePlains && rng.Float64() < g.ForestDensity {
					placeBush(data, g.Catalog, x, top+1, z)
				}
			}
		}
	}
}

// getBiomeType определяет тип биома на основе значений шума
func getBiomeType(height, biomeValue float64) BiomeType {
	if height < ShallowWaterMax {
		return BiomeWater
	}
	if height > MountainStart {
		return BiomeMountains
	}
	if biomeValue < 0.35 {
		return BiomeDesert
	} else if biomeValue > 0.65 {
		return BiomeForest
	}
	return BiomePlains
}

// fillColumn заполняет колонку: камень, слой почвы биома, поверхность и вода до уровня моря
func fillColumn(data *ChunkBlockData, catalog *block.Catalog, x, z, top int, biome BiomeType, rng *rand.Rand) {
	if top >= ChunkSizeY {
		top = ChunkSizeY - 1
	}
	stone := catalog.Get(block.StoneBlockID)
	soil, surface := surfaceBlocksForBiome(biome, catalog)

	for y := 0; y <= top; y++ {
		local := vec.Vec3{X: x, Y: y, Z: z}
		switch {
		case y == top:
			data.Set(local, surface, 0, nil)
		case y >= top-3:
			data.Set(local, soil, 0, nil)
		default:
			data.Set(local, stone, 0, nil)
		}
	}

	if biome == BiomeWater {
		water := catalog.Get(block.WaterBlockID)
		for y := top + 1; y <= SeaLevel; y++ {
			data.Set(vec.Vec3{X: x, Y: y, Z: z}, water, 0, nil)
		}
	}

	// Редкие светящиеся вкрапления в горах
	if biome == BiomeMountains && rng != nil && rng.Float64() < 0.01 && top > 4 {
		data.Set(vec.Vec3{X: x, Y: top - 4, Z: z}, catalog.Get(block.GlowstoneBlockID), 0, nil)
	}
}

// surfaceBlocksForBiome возвращает блоки почвы и поверхности для биома
func surfaceBlocksForBiome(biome BiomeType, catalog *block.Catalog) (soil, surface block.Descriptor) {
	switch biome {
	case BiomeDesert, BiomeWater:
		return catalog.Get(block.SandBlockID), catalog.Get(block.SandBlockID)
	case BiomeMountains:
		return catalog.Get(block.StoneBlockID), catalog.Get(block.StoneBlockID)
	default:
		return catalog.Get(block.DirtBlockID), catalog.Get(block.GrassBlockID)
	}
}

// placeBush ставит куст из листвы над поверхностью
func placeBush(data *ChunkBlockData, catalog *block.Catalog, x, y, z int) {
	leaves := catalog.Get(block.LeavesBlockID)
	for dy := 0; dy < 2; dy++ {
		local := vec.Vec3{X: x, Y: y + dy, Z: z}
		if !IsValidY(local.Y) || data.ID(local) != block.VoidBlockID {
			return
		}
		data.Set(local, leaves, 0, nil)
	}
}

// NewGenerator создаёт генератор по имени из конфигурации
func NewGenerator(kind string, catalog *block.Catalog, seed int64, flatHeight int) (LandGenerator, error) {
	switch kind {
	case "flat":
		return NewFlatGenerator(catalog, flatHeight), nil
	case "perlin", "":
		return NewPerlinGenerator(catalog, seed), nil
	case "simplex":
		return NewSimplexGenerator(catalog, seed), nil
	default:
		return nil, fmt.Errorf("неизвестный генератор %q", kind)
	}
}
