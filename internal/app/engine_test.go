package app

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/annel0/voxel-engine/internal/config"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/tile"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, storageType string) *config.Config {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.World.Storage = storageType
	cfg.World.SavePath = filepath.Join(dir, "world.bin")
	cfg.World.BadgerPath = filepath.Join(dir, "chunks")
	cfg.Mesher.Workers = 2
	cfg.Pathfinding.Workers = 2
	cfg.Generator.SizeChunks = 2
	cfg.Generator.HeightChunks = 1
	cfg.Engine.TickRate = 200
	cfg.Engine.AutosaveSeconds = 0
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { e.Shutdown() })
	return e
}

func TestEngine_GenerateAndMesh(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.StorageFile))

	n, err := e.Generate()
	require.NoError(t, err)
	require.Greater(t, n, 0)

	meshed, _ := e.Tick(context.Background(), time.Millisecond)
	assert.Equal(t, n, meshed, "все новые чанки перестраиваются на первом тике")
	assert.Equal(t, 0, e.World().DirtyCount())

	n2, err := e.Generate()
	require.NoError(t, err)
	assert.Equal(t, 0, n2, "непустой мир не генерируется повторно")
}

func TestEngine_PathDeliveredByTick(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.StorageFile))
	e.World().FillRegion(vec.Vec3{Y: -1}, vec.Vec3{X: 7, Y: -1, Z: 7}, tile.New(0, tile.ModelCube, 0))

	var nodes atomic.Int32
	_, err := e.Paths().RequestPath(vec.Vec3{}, vec.Vec3{X: 7, Z: 7}, func(valid bool, path []mgl32.Vec3, nodeCount int) {
		if valid {
			nodes.Store(int32(nodeCount))
		}
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		e.Tick(context.Background(), time.Millisecond)
		return nodes.Load() == 7
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngine_SaveAndLoad(t *testing.T) {
	for _, storageType := range []string{config.StorageFile, config.StorageBadger} {
		t.Run(storageType, func(t *testing.T) {
			cfg := testConfig(t, storageType)

			first, err := NewEngine(cfg)
			require.NoError(t, err)
			generated, err := first.Generate()
			require.NoError(t, err)
			first.World().SetVoxelTile(vec.Vec3{X: 3, Y: 15, Z: 3}, 4, tile.ModelStairTwoStep, tile.PackRotation(0, 1, 0))
			require.NoError(t, first.Shutdown(), "остановка сохраняет мир")

			second := newTestEngine(t, cfg)
			loaded, err := second.Load()
			require.NoError(t, err)
			assert.GreaterOrEqual(t, loaded, generated)

			got, found := second.World().TryGetVoxelTile(vec.Vec3{X: 3, Y: 15, Z: 3})
			require.True(t, found)
			assert.Equal(t, tile.New(4, tile.ModelStairTwoStep, tile.PackRotation(0, 1, 0)), got)
			assert.Equal(t, loaded, second.World().DirtyCount(), "загруженные чанки ждут перестроения")
		})
	}
}

func TestEngine_LoadMissingFile(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.StorageFile))
	n, err := e.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.StorageFile))
	_, err := e.Generate()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	require.Eventually(t, func() bool {
		return e.World().DirtyCount() == 0
	}, 2*time.Second, 5*time.Millisecond, "цикл перестраивает чанки")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("игровой цикл не остановился")
	}
}

func TestEngine_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.World.ChunkSize = 0
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}
