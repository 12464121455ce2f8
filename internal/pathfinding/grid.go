package pathfinding

import (
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/tile"
)

// Grid снимок вокселей только для чтения, принадлежащий одному запросу
type Grid struct {
	chunkSize int
	chunks    map[vec.Vec3]*tile.ChunkData
}

// NewGrid создаёт сетку поверх копий чанков
func NewGrid(chunkSize int, chunks map[vec.Vec3]*tile.ChunkData) *Grid {
	return &Grid{chunkSize: chunkSize, chunks: chunks}
}

// TileAir проверяет, можно ли находиться в клетке.
// Отсутствующий чанк и воздух проходимы; восьмая часть куба тоже
// считается проходимой, остальные модели нет.
func (g *Grid) TileAir(p vec.Vec3) bool {
	coords, local := p.SplitChunk(g.chunkSize)
	data, ok := g.chunks[coords]
	if !ok {
		return true
	}
	t := data.GetTile(local)
	if t.IsAir() {
		return true
	}
	return t.Model == tile.ModelEighthCube
}

var (
	up    = vec.Vec3{Y: 1}
	down  = vec.Vec3{Y: -1}
	up2   = vec.Vec3{Y: 2}
	down2 = vec.Vec3{Y: -2}
)

// AreaClear под клеткой опора, в клетке и над ней свободно
func (g *Grid) AreaClear(p vec.Vec3) bool {
	return !g.TileAir(p.Add(down)) && g.TileAir(p) && g.TileAir(p.Add(up))
}

// ClearToGoUp из клетки можно подняться: она свободна и есть место над головой
func (g *Grid) ClearToGoUp(p vec.Vec3) bool {
	return g.AreaClear(p) && g.TileAir(p.Add(up2))
}

// ClearUp на клетку можно встать сверху: она твёрдая, над ней две свободные
func (g *Grid) ClearUp(p vec.Vec3) bool {
	return !g.TileAir(p) && g.TileAir(p.Add(up)) && g.TileAir(p.Add(up2))
}

// ClearDown можно спуститься на клетку ниже
func (g *Grid) ClearDown(p vec.Vec3) bool {
	return !g.TileAir(p.Add(down2)) && g.TileAir(p.Add(down)) && g.TileAir(p) && g.TileAir(p.Add(up))
}
