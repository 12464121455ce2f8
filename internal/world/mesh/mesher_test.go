package mesh

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/tile"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type faceTextures struct{}

func (faceTextures) TextureIndex(assetID uint16, face int) int {
	return int(assetID)*10 + face
}

func newTestMesher(t *testing.T, workers int) *Mesher {
	m := NewMesher(workers, faceTextures{})
	t.Cleanup(m.Close)
	return m
}

func cube(asset uint16) tile.TileData {
	return tile.New(asset, tile.ModelCube, 0)
}

// triangleKeys возвращает отсортированные ключи треугольников
// (вершины внутри треугольника тоже отсортированы), чтобы сравнивать
// меши без учёта порядка
func triangleKeys(positions []mgl32.Vec3, normals []mgl32.Vec3) []string {
	keys := make([]string, 0, len(positions)/3)
	for i := 0; i+2 < len(positions); i += 3 {
		pts := []string{
			fmt.Sprintf("%.3f,%.3f,%.3f", positions[i][0], positions[i][1], positions[i][2]),
			fmt.Sprintf("%.3f,%.3f,%.3f", positions[i+1][0], positions[i+1][1], positions[i+1][2]),
			fmt.Sprintf("%.3f,%.3f,%.3f", positions[i+2][0], positions[i+2][1], positions[i+2][2]),
		}
		sort.Strings(pts)
		n := normals[i]
		keys = append(keys, fmt.Sprintf("%v|%.0f,%.0f,%.0f", pts, n[0], n[1], n[2]))
	}
	sort.Strings(keys)
	return keys
}

func meshTriangles(m *Mesh) []string {
	positions := make([]mgl32.Vec3, len(m.Indices))
	normals := make([]mgl32.Vec3, len(m.Indices))
	for i, idx := range m.Indices {
		positions[i] = m.Vertices[idx].Position
		normals[i] = m.Vertices[idx].Normal
	}
	return triangleKeys(positions, normals)
}

func TestEmptyChunkProducesEmptyMesh(t *testing.T) {
	m := newTestMesher(t, 2)
	out := m.Generate(NewSingle(tile.NewChunkData(8)))
	assert.True(t, out.IsEmpty())
	assert.Equal(t, 0, out.TriangleCount())
}

func TestSingleCubeEmitsAllFaces(t *testing.T) {
	m := newTestMesher(t, 2)
	data := tile.NewChunkData(4)
	data.SetTile(vec.Vec3{X: 1, Y: 1, Z: 1}, cube(1))

	out := m.Generate(NewSingle(data))
	require.Equal(t, 36, out.VertexCount(), "одиночный куб: 6 граней по 2 треугольника")
	assert.Equal(t, 12, out.TriangleCount())

	for i, idx := range out.Indices {
		assert.Equal(t, uint32(i), idx, "индексы последовательные")
	}
	for _, v := range out.Vertices {
		for k := 0; k < 3; k++ {
			assert.GreaterOrEqual(t, v.Position[k], float32(1))
			assert.LessOrEqual(t, v.Position[k], float32(2))
		}
	}
}

func TestAdjacentCubesCullSharedFace(t *testing.T) {
	m := newTestMesher(t, 4)
	data := tile.NewChunkData(4)
	data.SetTile(vec.Vec3{X: 1, Y: 1, Z: 1}, cube(1))
	data.SetTile(vec.Vec3{X: 2, Y: 1, Z: 1}, cube(1))

	out := m.Generate(NewSingle(data))
	assert.Equal(t, 10*2*3, out.VertexCount(), "общая грань двух кубов не выводится")

	for _, v := range out.Vertices {
		if v.Normal == (mgl32.Vec3{1, 0, 0}) {
			assert.Equal(t, float32(3), v.Position[0], "грань +X есть только у правого куба")
		}
	}
}

func TestCubeUnderSlabCullsBothFaces(t *testing.T) {
	m := newTestMesher(t, 1)
	data := tile.NewChunkData(4)
	data.SetTile(vec.Vec3{X: 1, Y: 1, Z: 1}, cube(1))
	data.SetTile(vec.Vec3{X: 1, Y: 2, Z: 1}, tile.New(2, tile.ModelHalfCube, 0))

	out := m.Generate(NewSingle(data))
	assert.Equal(t, (5+5)*2*3, out.VertexCount(), "верх куба и низ плиты скрыты")
}

func TestSlabBesideCubeKeepsCubeFace(t *testing.T) {
	m := newTestMesher(t, 1)
	data := tile.NewChunkData(4)
	data.SetTile(vec.Vec3{X: 1, Y: 1, Z: 1}, cube(1))
	data.SetTile(vec.Vec3{X: 2, Y: 1, Z: 1}, tile.New(2, tile.ModelHalfCube, 0))

	out := m.Generate(NewSingle(data))
	// у плиты боковая грань неполная, поэтому грань куба остаётся,
	// а боковая грань плиты скрыта кубом
	assert.Equal(t, (6+5)*2*3, out.VertexCount())
}

// cubeFrontFace считает вершины грани +Z куба в (1,1,1)
func cubeFrontFace(out *Mesh) int {
	count := 0
	for _, v := range out.Vertices {
		if v.Normal == (mgl32.Vec3{0, 0, 1}) && v.Position[2] == 2 {
			count++
		}
	}
	return count
}

func TestRotatedSlabCullsCubeFace(t *testing.T) {
	m := newTestMesher(t, 2)
	data := tile.NewChunkData(4)
	data.SetTile(vec.Vec3{X: 1, Y: 1, Z: 1}, cube(1))
	// поворот вокруг X разворачивает полный низ плиты к кубу
	data.SetTile(vec.Vec3{X: 1, Y: 1, Z: 2}, tile.New(2, tile.ModelHalfCube, tile.PackRotation(1, 0, 0)))

	out := m.Generate(NewSingle(data))
	assert.Equal(t, 0, cubeFrontFace(out), "грань куба закрыта повёрнутой плитой")
	assert.Equal(t, (5+5)*2*3, out.VertexCount(), "обе соприкасающиеся грани скрыты")
}

func TestRotatedSlabKeepsCubeFace(t *testing.T) {
	m := newTestMesher(t, 2)
	data := tile.NewChunkData(4)
	data.SetTile(vec.Vec3{X: 1, Y: 1, Z: 1}, cube(1))
	// здесь к кубу обращён неполный верх плиты
	data.SetTile(vec.Vec3{X: 1, Y: 1, Z: 2}, tile.New(2, tile.ModelHalfCube, tile.PackRotation(3, 0, 0)))

	out := m.Generate(NewSingle(data))
	assert.Equal(t, 6, cubeFrontFace(out), "неполная грань соседа не скрывает куб")
	assert.Equal(t, (6+6)*2*3, out.VertexCount())
}

func TestNeighborChunkOcclusion(t *testing.T) {
	m := newTestMesher(t, 2)
	center := tile.NewChunkData(4)
	center.SetTile(vec.Vec3{X: 3, Y: 0, Z: 0}, cube(1))

	alone := m.Generate(NewNeighbors(vec.Zero3, map[vec.Vec3]*tile.ChunkData{vec.Zero3: center}))
	assert.Equal(t, 36, alone.VertexCount(), "отсутствующий сосед считается воздухом")

	right := tile.NewChunkData(4)
	right.SetTile(vec.Vec3{X: 0, Y: 0, Z: 0}, cube(1))
	withNeighbor := m.Generate(NewNeighbors(vec.Zero3, map[vec.Vec3]*tile.ChunkData{
		vec.Zero3:          center,
		{X: 1, Y: 0, Z: 0}: right,
	}))
	assert.Equal(t, 30, withNeighbor.VertexCount(), "грань на границе чанков скрыта соседом")
}

func TestVertexEstimateIsUpperBound(t *testing.T) {
	m := newTestMesher(t, 0)
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 5; round++ {
		data := tile.NewChunkData(8)
		for i := 0; i < data.Len(); i++ {
			if rng.Intn(3) == 0 {
				continue
			}
			model := tile.ModelType(rng.Intn(int(tile.ModelCount)))
			rot := tile.PackRotation(uint8(rng.Intn(4)), uint8(rng.Intn(4)), uint8(rng.Intn(4)))
			data.SetTileAt(i, tile.New(uint16(rng.Intn(5)), model, rot))
		}
		out := m.Generate(NewSingle(data))
		assert.LessOrEqual(t, out.VertexCount(), data.EstimateVertexCount())
		assert.Equal(t, out.VertexCount(), len(out.Indices))
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	serial := newTestMesher(t, 1)
	parallel := newTestMesher(t, 8)
	rng := rand.New(rand.NewSource(7))

	data := tile.NewChunkData(16)
	for i := 0; i < data.Len(); i++ {
		if rng.Intn(2) == 0 {
			model := tile.ModelType(rng.Intn(int(tile.ModelCount)))
			data.SetTileAt(i, tile.New(1, model, tile.PackRotation(0, uint8(rng.Intn(4)), 0)))
		}
	}

	a := serial.Generate(NewSingle(data))
	b := parallel.Generate(NewSingle(data))
	assert.Equal(t, meshTriangles(a), meshTriangles(b), "параллельный проход даёт тот же набор треугольников")
}

func TestStairBottomFaceHasTwoTriangles(t *testing.T) {
	m := newTestMesher(t, 1)
	data := tile.NewChunkData(2)
	data.SetTileAt(0, tile.New(1, tile.ModelStairTwoStep, 0))

	out := m.Generate(NewSingle(data))
	// 5 граней по 4 треугольника и нижняя грань из 2
	assert.Equal(t, (5*4+2)*3, out.VertexCount())
}

func TestRotationConsistency(t *testing.T) {
	m := newTestMesher(t, 1)

	for _, model := range []tile.ModelType{tile.ModelCube, tile.ModelHalfCube, tile.ModelQuarterCube, tile.ModelEighthCube, tile.ModelStairTwoStep} {
		for r := uint8(1); r < 4; r++ {
			plain := tile.NewChunkData(1)
			plain.SetTileAt(0, tile.New(1, model, 0))
			rotated := tile.NewChunkData(1)
			rotated.SetTileAt(0, tile.New(1, model, tile.PackRotation(0, r, 0)))

			base := m.Generate(NewSingle(plain))
			positions := make([]mgl32.Vec3, len(base.Indices))
			normals := make([]mgl32.Vec3, len(base.Indices))
			for i, idx := range base.Indices {
				v := base.Vertices[idx]
				positions[i] = RotateVertY(v.Position, r)
				n := RotateY(vec.Vec3{X: int(v.Normal[0]), Y: int(v.Normal[1]), Z: int(v.Normal[2])}, r)
				normals[i] = n.ToFloat()
			}

			got := meshTriangles(m.Generate(NewSingle(rotated)))
			assert.Equal(t, triangleKeys(positions, normals), got, "модель %s, поворот %d", model, r)
		}
	}
}

func TestIntegerAndFloatRotationsAgree(t *testing.T) {
	corners := []vec.Vec3{}
	for x := 0; x <= 1; x++ {
		for y := 0; y <= 1; y++ {
			for z := 0; z <= 1; z++ {
				corners = append(corners, vec.Vec3{X: x, Y: y, Z: z})
			}
		}
	}

	type pair struct {
		name  string
		ints  func(vec.Vec3, uint8) vec.Vec3
		float func(mgl32.Vec3, uint8) mgl32.Vec3
	}
	rotations := []pair{
		{"X", RotateX, RotateVertX},
		{"Y", RotateY, RotateVertY},
		{"Z", RotateZ, RotateVertZ},
	}

	for _, rot := range rotations {
		for r := uint8(0); r < 4; r++ {
			for _, c := range corners {
				// удвоенные координаты относительно центра: {-1, 1}
				centered := c.Scale(2).Sub(vec.Vec3{X: 1, Y: 1, Z: 1})
				want := rot.ints(centered, r)
				got := rot.float(c.ToFloat(), r)
				for k := 0; k < 3; k++ {
					assert.InDelta(t, float32(want.ToFloat()[k]), got[k]*2-1, 1e-6, "ось %s, r=%d, вершина %v", rot.name, r, c)
				}
			}
		}
	}
}

func TestInverseRotateNormal(t *testing.T) {
	for r := 0; r < 64; r++ {
		rot := tile.Rotation(r)
		for _, n := range FaceNormals {
			assert.Equal(t, n, InverseRotateNormal(RotateNormal(n, rot), rot))
		}
	}
}

func TestRotatedFaceTexture(t *testing.T) {
	m := newTestMesher(t, 1)
	data := tile.NewChunkData(1)
	data.SetTileAt(0, tile.New(3, tile.ModelCube, tile.PackRotation(0, 1, 0)))

	out := m.Generate(NewSingle(data))
	for _, v := range out.Vertices {
		n := vec.Vec3{X: int(v.Normal[0]), Y: int(v.Normal[1]), Z: int(v.Normal[2])}
		assert.Equal(t, float32(30+FaceIndex(n)), v.UV[2], "индекс текстуры берётся по мировой грани")
		assert.GreaterOrEqual(t, v.UV[0], float32(0))
		assert.LessOrEqual(t, v.UV[0], float32(1))
	}
}

func TestFlipUOnFrontFace(t *testing.T) {
	uv := faceUV(mgl32.Vec3{1, 0.5, 1}, FaceFront, 4)
	assert.Equal(t, mgl32.Vec4{0, 0.5, 4, 0}, uv)

	uv = faceUV(mgl32.Vec3{0.25, 1, 0.75}, FaceTop, 2)
	assert.Equal(t, mgl32.Vec4{0.25, 0.75, 2, 0}, uv)
}
