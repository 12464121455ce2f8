package mesh

import (
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/tile"
)

// Neighborhood доступ мешера к данным чанка и его 26 соседей
type Neighborhood interface {
	// Center возвращает данные чанка, для которого строится меш
	Center() *tile.ChunkData
	// TileAt возвращает тайл по координатам относительно начала центрального чанка.
	// false означает, что соответствующий чанк отсутствует.
	TileAt(rel vec.Vec3) (tile.TileData, bool)
}

// Neighbors окрестность 3×3×3 чанков. Отсутствующие соседи хранятся как nil.
type Neighbors struct {
	size   int
	chunks [27]*tile.ChunkData
}

func neighborSlot(off vec.Vec3) int {
	return (off.X + 1) + (off.Y+1)*3 + (off.Z+1)*9
}

// NewNeighbors собирает окрестность из набора чанков, ключи которого
// абсолютные координаты чанков. Центральный чанк обязан присутствовать.
func NewNeighbors(center vec.Vec3, chunks map[vec.Vec3]*tile.ChunkData) *Neighbors {
	n := &Neighbors{}
	for coords, data := range chunks {
		off := coords.Sub(center)
		if off.X < -1 || off.X > 1 || off.Y < -1 || off.Y > 1 || off.Z < -1 || off.Z > 1 {
			continue
		}
		n.chunks[neighborSlot(off)] = data
	}
	if c := n.chunks[neighborSlot(vec.Zero3)]; c != nil {
		n.size = c.Size()
	}
	return n
}

// NewSingle окрестность из одного чанка без соседей
func NewSingle(data *tile.ChunkData) *Neighbors {
	n := &Neighbors{size: data.Size()}
	n.chunks[neighborSlot(vec.Zero3)] = data
	return n
}

// Center возвращает центральный чанк
func (n *Neighbors) Center() *tile.ChunkData {
	return n.chunks[neighborSlot(vec.Zero3)]
}

// TileAt возвращает тайл из центрального или соседнего чанка
func (n *Neighbors) TileAt(rel vec.Vec3) (tile.TileData, bool) {
	off, local := rel.SplitChunk(n.size)
	if off.X < -1 || off.X > 1 || off.Y < -1 || off.Y > 1 || off.Z < -1 || off.Z > 1 {
		return tile.Air, false
	}
	data := n.chunks[neighborSlot(off)]
	if data == nil {
		return tile.Air, false
	}
	return data.GetTile(local), true
}
