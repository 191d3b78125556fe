package util

import (
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// PerlinNoise - генератор шума Перлина с собственным сидом
type PerlinNoise struct {
	p *perlin.Perlin
}

// NewPerlinNoise создаёт генератор шума Перлина с указанным сидом
func NewPerlinNoise(seed int64) *PerlinNoise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &PerlinNoise{p: perlin.NewPerlin(alpha, beta, n, seed)}
}

// Noise2D возвращает значение шума Перлина для указанных координат (от 0 до 1)
func (n *PerlinNoise) Noise2D(x, y float64) float64 {
	return clamp01((n.p.Noise2D(x, y) + 1.0) / 2.0)
}

// SimplexNoise - фрактальный шум на основе OpenSimplex
type SimplexNoise struct {
	noise       opensimplex.Noise
	Octaves     int
	Lacunarity  float64
	Persistence float64
}

// NewSimplexNoise создаёт фрактальный генератор с параметрами по умолчанию
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{
		noise:       opensimplex.New(seed),
		Octaves:     4,
		Lacunarity:  2.0,
		Persistence: 0.5,
	}
}

// Fractal2D суммирует октавы и нормирует результат в диапазон от 0 до 1
func (n *SimplexNoise) Fractal2D(x, y float64) float64 {
	amplitude := 1.0
	total := 0.0
	norm := 0.0
	for i := 0; i < n.Octaves; i++ {
		total += n.noise.Eval2(x, y) * amplitude
		norm += amplitude
		x *= n.Lacunarity
		y *= n.Lacunarity
		amplitude *= n.Persistence
	}
	if norm == 0 {
		return 0.5
	}
	return clamp01((total/norm + 1.0) / 2.0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
