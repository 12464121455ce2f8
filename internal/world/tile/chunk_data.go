package tile

import (
	"fmt"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultChunkSize размер стороны чанка по умолчанию
const DefaultChunkSize = 16

// TilePrefabData размещение префаба внутри чанка.
// Префабы не входят в плотную сетку тайлов.
type TilePrefabData struct {
	AssetID  uint16
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // Углы Эйлера в градусах
}

// ChunkData плотный куб из size³ тайлов, индекс x + y*size + z*size².
// Обращение за пределами [0, size) по любой оси вызывает панику.
type ChunkData struct {
	size    int
	tiles   []TileData
	prefabs []TilePrefabData
}

// NewChunkData создаёт пустой (полностью воздушный) чанк
func NewChunkData(size int) *ChunkData {
	if size <= 0 {
		panic(fmt.Sprintf("tile: недопустимый размер чанка %d", size))
	}
	tiles := make([]TileData, size*size*size)
	for i := range tiles {
		tiles[i] = Air
	}
	return &ChunkData{size: size, tiles: tiles}
}

// Size возвращает длину стороны чанка
func (c *ChunkData) Size() int {
	return c.size
}

// Len возвращает количество тайлов
func (c *ChunkData) Len() int {
	return len(c.tiles)
}

// InBounds проверяет, лежат ли локальные координаты внутри чанка
func (c *ChunkData) InBounds(local vec.Vec3) bool {
	return local.X >= 0 && local.X < c.size &&
		local.Y >= 0 && local.Y < c.size &&
		local.Z >= 0 && local.Z < c.size
}

// Index возвращает линейный индекс тайла
func (c *ChunkData) Index(local vec.Vec3) int {
	if !c.InBounds(local) {
		panic(fmt.Sprintf("tile: координаты %v вне чанка размера %d", local, c.size))
	}
	return local.X + local.Y*c.size + local.Z*c.size*c.size
}

// IndexToLocal обратное преобразование линейного индекса
func IndexToLocal(index, size int) vec.Vec3 {
	return vec.Vec3{
		X: index % size,
		Y: (index / size) % size,
		Z: index / (size * size),
	}
}

// GetTile возвращает тайл по локальным координатам
func (c *ChunkData) GetTile(local vec.Vec3) TileData {
	return c.tiles[c.Index(local)]
}

// SetTile записывает тайл. Пометка чанка и соседей грязными
// остаётся на вызывающей стороне.
func (c *ChunkData) SetTile(local vec.Vec3, t TileData) {
	if t.IsAir() {
		t = Air
	}
	c.tiles[c.Index(local)] = t
}

// TileAt возвращает тайл по линейному индексу
func (c *ChunkData) TileAt(index int) TileData {
	return c.tiles[index]
}

// SetTileAt записывает тайл по линейному индексу
func (c *ChunkData) SetTileAt(index int, t TileData) {
	if t.IsAir() {
		t = Air
	}
	c.tiles[index] = t
}

// EstimateVertexCount верхняя оценка числа вершин меша.
// Отсечение граней только уменьшает реальное количество.
func (c *ChunkData) EstimateVertexCount() int {
	total := 0
	for _, t := range c.tiles {
		if t.IsAir() {
			continue
		}
		total += t.Model.VertexEstimate()
	}
	return total
}

// IsEmpty проверяет, что в чанке нет ни одного твёрдого тайла и префаба
func (c *ChunkData) IsEmpty() bool {
	if len(c.prefabs) > 0 {
		return false
	}
	for _, t := range c.tiles {
		if !t.IsAir() {
			return false
		}
	}
	return true
}

// Clone возвращает глубокую копию данных чанка
func (c *ChunkData) Clone() *ChunkData {
	clone := &ChunkData{
		size:  c.size,
		tiles: make([]TileData, len(c.tiles)),
	}
	copy(clone.tiles, c.tiles)
	if len(c.prefabs) > 0 {
		clone.prefabs = append([]TilePrefabData(nil), c.prefabs...)
	}
	return clone
}

// Prefabs возвращает список префабов чанка
func (c *ChunkData) Prefabs() []TilePrefabData {
	return c.prefabs
}

// AddPrefab добавляет префаб в чанк
func (c *ChunkData) AddPrefab(p TilePrefabData) {
	c.prefabs = append(c.prefabs, p)
}

// ClearPrefabs удаляет все префабы чанка
func (c *ChunkData) ClearPrefabs() {
	c.prefabs = nil
}
