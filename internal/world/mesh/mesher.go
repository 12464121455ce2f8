package mesh

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/tile"
	"github.com/go-gl/mathgl/mgl32"
)

// TextureResolver возвращает индекс текстуры в атласе для грани ассета
type TextureResolver interface {
	TextureIndex(assetID uint16, face int) int
}

// Mesher строит меши чанков. Воксели обрабатываются параллельно на пуле
// воркеров, вызов Generate при этом синхронный.
type Mesher struct {
	pool     pond.Pool
	textures TextureResolver
	closed   atomic.Bool
}

// NewMesher создаёт мешер. workers <= 0 означает число ядер,
// workers == 1 отключает пул.
func NewMesher(workers int, textures TextureResolver) *Mesher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	m := &Mesher{textures: textures}
	if workers > 1 {
		m.pool = pond.NewPool(workers)
	}
	logging.GetMeshLogger().Debug("Мешер создан: воркеров %d", workers)
	return m
}

// Close останавливает пул воркеров. Последующие вызовы Generate
// выполняются в вызывающей горутине.
func (m *Mesher) Close() {
	if m.closed.Swap(true) {
		return
	}
	if m.pool != nil {
		m.pool.StopAndWait()
	}
}

// Generate строит меш центрального чанка окрестности.
// Грани, закрытые полными гранями соседей, не попадают в меш.
// Отсутствующий соседний чанк считается воздухом.
func (m *Mesher) Generate(nb Neighborhood) *Mesh {
	data := nb.Center()
	estimate := data.EstimateVertexCount()
	if estimate == 0 {
		return &Mesh{}
	}

	out := make([]Vertex, estimate)
	var counter atomic.Int64

	size := data.Size()
	batch := size * size
	total := data.Len()

	if m.pool == nil || m.closed.Load() {
		for i := 0; i < total; i++ {
			m.meshVoxel(nb, data, i, out, &counter)
		}
	} else {
		var wg sync.WaitGroup
		for start := 0; start < total; start += batch {
			begin, end := start, min(start+batch, total)
			wg.Add(1)
			m.pool.Submit(func() {
				defer wg.Done()
				for i := begin; i < end; i++ {
					m.meshVoxel(nb, data, i, out, &counter)
				}
			})
		}
		wg.Wait()
	}

	count := int(counter.Load())
	indices := make([]uint32, count)
	for i := range indices {
		indices[i] = uint32(i)
	}
	return &Mesh{Vertices: out[:count:count], Indices: indices}
}

func (m *Mesher) meshVoxel(nb Neighborhood, data *tile.ChunkData, index int, out []Vertex, counter *atomic.Int64) {
	t := data.TileAt(index)
	if t.IsAir() || !t.Model.Valid() {
		return
	}

	local := tile.IndexToLocal(index, data.Size())
	origin := local.ToFloat()
	verts := ModelVerts[t.Model]
	faces := ModelFaces[t.Model]
	tris := TrisPerFace[t.Model]
	stride := tris * 3

	for face := 0; face < FaceCount; face++ {
		normal := RotateNormal(FaceNormals[face], t.Rotation)
		if ConnectsToFullFace[t.Model][face] && isTileFullFace(nb, local.Add(normal), normal.Neg()) {
			continue
		}

		texture := m.textureIndex(t.AssetID, FaceIndex(normal))
		nf := normal.ToFloat()
		base := face * stride

		for tri := 0; tri < tris; tri++ {
			k := base + tri*3
			if faces[k] < 0 {
				break
			}
			at := int(counter.Add(3) - 3)
			for c := 0; c < 3; c++ {
				v := verts[faces[k+c]]
				out[at+c] = Vertex{
					Position: origin.Add(RotateVertex(v, t.Rotation)),
					Normal:   nf,
					UV:       faceUV(v, face, texture),
				}
			}
		}
	}
}

func (m *Mesher) textureIndex(assetID uint16, face int) int {
	if m.textures == nil {
		return 0
	}
	return m.textures.TextureIndex(assetID, face)
}

// isTileFullFace проверяет, закрывает ли тайл в позиции pos своей гранью,
// обращённой по направлению n, соседнюю клетку целиком
func isTileFullFace(nb Neighborhood, pos vec.Vec3, n vec.Vec3) bool {
	t, ok := nb.TileAt(pos)
	if !ok || t.IsAir() || !t.Model.Valid() {
		return false
	}
	face := FaceIndex(InverseRotateNormal(n, t.Rotation))
	return IsFullFace[t.Model][face]
}

// faceUV проецирует неповёрнутую вершину на оси грани
func faceUV(v mgl32.Vec3, face int, texture int) mgl32.Vec4 {
	axes := UVAxes[face]
	u, w := v[axes[0]], v[axes[1]]
	if FlipU[face] {
		u = 1 - u
	}
	return mgl32.Vec4{u, w, float32(texture), 0}
}
