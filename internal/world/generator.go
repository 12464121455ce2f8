package world

import (
	"fmt"
	"math"

	"github.com/annel0/voxel-engine/internal/util"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/tile"
)

// Generator строит рельеф по карте высот из шума Перлина.
// Верхний слой покрывается SurfaceAsset, ниже SoilDepth идёт RockAsset.
type Generator struct {
	Seed         int64   // Сид для генерации шума
	NoiseScale   float64 // Масштаб шума (сглаженность рельефа)
	BaseHeight   int     // Минимальная высота поверхности
	Amplitude    int     // Разброс высот над BaseHeight
	SoilDepth    int     // Толщина слоя почвы под поверхностью
	SurfaceAsset uint16
	SoilAsset    uint16
	RockAsset    uint16

	noise *util.Noise
}

// NewGenerator создаёт генератор с настройками по умолчанию
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:         seed,
		NoiseScale:   0.05,
		BaseHeight:   2,
		Amplitude:    10,
		SoilDepth:    2,
		SurfaceAsset: 1,
		SoilAsset:    2,
		RockAsset:    0,
		noise:        util.NewNoise(seed),
	}
}

// Height возвращает высоту верхнего твёрдого вокселя в колонке (x, z)
func (g *Generator) Height(x, z int) int {
	n := g.noise.Noise2D(float64(x)*g.NoiseScale, float64(z)*g.NoiseScale)
	return g.BaseHeight + int(math.Round(n*float64(g.Amplitude)))
}

// tileAt возвращает тайл колонки на высоте y
func (g *Generator) tileAt(y, height int) tile.TileData {
	switch {
	case y > height:
		return tile.Air
	case y == height:
		return tile.New(g.SurfaceAsset, tile.ModelCube, 0)
	case y >= height-g.SoilDepth:
		return tile.New(g.SoilAsset, tile.ModelCube, 0)
	default:
		return tile.New(g.RockAsset, tile.ModelCube, 0)
	}
}

// GenerateChunk заполняет данные чанка по его координатам
func (g *Generator) GenerateChunk(coords vec.Vec3, size int) *tile.ChunkData {
	data := tile.NewChunkData(size)
	origin := coords.ChunkOrigin(size)

	for x := 0; x < size; x++ {
		for z := 0; z < size; z++ {
			height := g.Height(origin.X+x, origin.Z+z)
			for y := 0; y < size; y++ {
				t := g.tileAt(origin.Y+y, height)
				if !t.IsAir() {
					data.SetTile(vec.Vec3{X: x, Y: y, Z: z}, t)
				}
			}
		}
	}
	return data
}

// Generate создаёт чанки в диапазоне [from, to] координат чанков включительно.
// Полностью пустые чанки пропускаются. Возвращает число созданных чанков.
func (g *Generator) Generate(w *World, from, to vec.Vec3) (int, error) {
	created := 0
	for cx := from.X; cx <= to.X; cx++ {
		for cy := from.Y; cy <= to.Y; cy++ {
			for cz := from.Z; cz <= to.Z; cz++ {
				coords := vec.Vec3{X: cx, Y: cy, Z: cz}
				data := g.GenerateChunk(coords, w.ChunkSize())
				if data.IsEmpty() {
					continue
				}
				if _, err := w.CreateChunk(coords, data); err != nil {
					return created, fmt.Errorf("ошибка генерации чанка %v: %w", coords, err)
				}
				created++
			}
		}
	}
	return created, nil
}
