package storage

import (
	"bytes"
	"encoding/binary"
	"io"
	"path/filepath"
	"testing"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/tile"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVoxels = map[vec.Vec3]tile.TileData{
	{X: 0, Y: 0, Z: 0}:     tile.New(1, tile.ModelCube, 0),
	{X: 5, Y: 2, Z: 7}:     tile.New(2, tile.ModelHalfCube, tile.PackRotation(1, 2, 3)),
	{X: -1, Y: -1, Z: -1}:  tile.New(3, tile.ModelStairTwoStep, tile.PackRotation(0, 1, 0)),
	{X: 17, Y: -20, Z: 33}: tile.New(4, tile.ModelEighthCube, tile.PackRotation(3, 0, 0)),
}

func buildWorld(t *testing.T) *world.World {
	w := world.NewWorld(16, nil)
	for p, td := range testVoxels {
		w.SetVoxel(p, td)
	}
	chunk, ok := w.GetChunk(vec.Vec3{})
	require.True(t, ok)
	chunk.Data().AddPrefab(tile.TilePrefabData{
		AssetID:  9,
		Position: mgl32.Vec3{1.5, 2, 3.25},
		Rotation: mgl32.Vec3{0, 90, 0},
	})
	return w
}

func assertSameWorld(t *testing.T, expected, actual *world.World) {
	require.Equal(t, expected.ChunkCoords(), actual.ChunkCoords(), "набор чанков должен совпадать")
	for _, coords := range expected.ChunkCoords() {
		a, _ := expected.GetChunk(coords)
		b, _ := actual.GetChunk(coords)
		for i := 0; i < a.Data().Len(); i++ {
			require.Equal(t, a.Data().TileAt(i), b.Data().TileAt(i), "чанк %v, тайл %d", coords, i)
		}
		assert.Equal(t, a.Data().Prefabs(), b.Data().Prefabs(), "префабы чанка %v", coords)
	}
}

func TestWorldRoundTrip(t *testing.T) {
	src := buildWorld(t)

	var buf bytes.Buffer
	require.NoError(t, WriteWorld(&buf, src))

	dst := world.NewWorld(16, nil)
	n, err := ReadWorld(&buf, dst)
	require.NoError(t, err)
	assert.Equal(t, src.ChunkCount(), n)
	assertSameWorld(t, src, dst)

	assert.Len(t, dst.DirtyChunks(), n, "загруженные чанки ждут перестроения")
	for _, coords := range dst.ChunkCoords() {
		chunk, _ := dst.GetChunk(coords)
		assert.False(t, chunk.HasChanges(), "загруженный чанк не требует сохранения")
	}
}

func TestWriteWorldLayout(t *testing.T) {
	w := world.NewWorld(2, nil)
	_, err := w.CreateEmptyChunk(vec.Vec3{X: 1, Y: -2, Z: 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteWorld(&buf, w))

	expected := new(bytes.Buffer)
	for _, v := range []int32{1, 1, -2, 3} {
		binary.Write(expected, binary.LittleEndian, v)
	}
	for i := 0; i < 8; i++ {
		binary.Write(expected, binary.LittleEndian, uint16(tile.AirAssetID))
	}
	binary.Write(expected, binary.LittleEndian, int32(0))

	assert.Equal(t, expected.Bytes(), buf.Bytes(), "воздух занимает 2 байта, префабов нет")
}

func TestWriteWorldClearsChanges(t *testing.T) {
	w := buildWorld(t)
	require.NoError(t, WriteWorld(io.Discard, w))

	for _, coords := range w.ChunkCoords() {
		chunk, _ := w.GetChunk(coords)
		assert.False(t, chunk.HasChanges())
	}
}

func TestReadWorldTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorld(&buf, buildWorld(t)))
	data := buf.Bytes()

	for _, cut := range []int{0, 3, 10, len(data) - 1} {
		_, err := ReadWorld(bytes.NewReader(data[:cut]), world.NewWorld(16, nil))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "обрезка на %d байтах", cut)
	}
}

func TestReadWorldReplacesExisting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorld(&buf, buildWorld(t)))

	dst := world.NewWorld(16, nil)
	dst.SetVoxelTile(vec.Vec3{X: 1}, 7, tile.ModelCube, 0)

	_, err := ReadWorld(&buf, dst)
	require.NoError(t, err)

	got, ok := dst.TryGetVoxelTile(vec.Vec3{X: 1})
	require.True(t, ok)
	assert.True(t, got.IsAir(), "данные файла заменяют существующий чанк")
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "world.bin")
	src := buildWorld(t)
	require.NoError(t, SaveFile(path, src))
	assert.NoFileExists(t, path+".tmp", "временный файл переименован")

	dst := world.NewWorld(16, nil)
	n, err := LoadFile(path, dst)
	require.NoError(t, err)
	assert.Equal(t, src.ChunkCount(), n)
	assertSameWorld(t, src, dst)
}

func TestLoadFileMissing(t *testing.T) {
	w := world.NewWorld(16, nil)
	n, err := LoadFile(filepath.Join(t.TempDir(), "absent.bin"), w)
	require.NoError(t, err, "отсутствие файла не ошибка")
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, w.ChunkCount())
}
