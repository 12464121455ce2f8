package world

import (
	"sync"

	"github.com/annel0/voxel-engine/internal/physics"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/mesh"
	"github.com/annel0/voxel-engine/internal/world/tile"
)

// Chunk владеет данными тайлов, мешем и коллайдером одного участка мира.
// Координаты чанка не меняются после создания.
type Chunk struct {
	Coords vec.Vec3

	data     *tile.ChunkData
	mesh     *mesh.Mesh
	collider *physics.MeshCollider
	dirty    bool

	ChangeCounter int          // Счетчик изменений тайлов
	Mu            sync.RWMutex // Мьютекс для безопасного доступа
}

// NewChunk создаёт чанк с указанными данными. Новый чанк всегда грязный
// и считается несохранённым.
func NewChunk(coords vec.Vec3, data *tile.ChunkData) *Chunk {
	return &Chunk{
		Coords:        coords,
		data:          data,
		mesh:          &mesh.Mesh{},
		collider:      physics.NewMeshCollider(nil),
		dirty:         true,
		ChangeCounter: 1,
	}
}

// Data возвращает данные тайлов чанка
func (c *Chunk) Data() *tile.ChunkData {
	return c.data
}

// Mesh возвращает последний построенный меш
func (c *Chunk) Mesh() *mesh.Mesh {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.mesh
}

// Collider возвращает коллайдер чанка
func (c *Chunk) Collider() *physics.MeshCollider {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.collider
}

// IsDirty сообщает, нужно ли перестроить меш
func (c *Chunk) IsDirty() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.dirty
}

// MarkDirty помечает чанк для перестроения меша
func (c *Chunk) MarkDirty() {
	c.Mu.Lock()
	c.dirty = true
	c.Mu.Unlock()
}

// HasChanges сообщает, есть ли несохранённые изменения
func (c *Chunk) HasChanges() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.ChangeCounter > 0
}

// ClearChanges сбрасывает счётчик изменений после сохранения
func (c *Chunk) ClearChanges() {
	c.Mu.Lock()
	c.ChangeCounter = 0
	c.Mu.Unlock()
}

// setTile записывает тайл без пометки соседей
func (c *Chunk) setTile(local vec.Vec3, t tile.TileData) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	c.data.SetTile(local, t)
	c.ChangeCounter++
	c.dirty = true
}

// Update перестраивает меш, если чанк грязный.
// Возвращает true, если меш был перестроен.
func (c *Chunk) Update(mesher *mesh.Mesher, nb mesh.Neighborhood) bool {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	if !c.dirty {
		return false
	}
	c.dirty = false

	c.mesh = mesher.Generate(nb)
	// Пустой меш выключает коллайдер
	c.collider.Rebuild(c.mesh.Positions())
	return true
}
