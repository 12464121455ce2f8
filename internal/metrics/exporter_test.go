package metrics

import (
	"os"
	"testing"
	"time"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	chunks, dirty int
}

func (f fakeStats) ChunkCount() int { return f.chunks }
func (f fakeStats) DirtyCount() int { return f.dirty }

func TestExporterChunkEvents(t *testing.T) {
	e := NewExporter(nil)

	e.HandleEvent(world.ChunkEvent{Type: world.EventChunkCreated, Coords: vec.Vec3{X: 1}})
	e.HandleEvent(world.ChunkEvent{Type: world.EventChunkMeshed, VertexCount: 120, Duration: 2 * time.Millisecond})
	e.HandleEvent(world.ChunkEvent{Type: world.EventChunkMeshed, VertexCount: 36, Duration: time.Millisecond})

	assert.Equal(t, 2.0, testutil.ToFloat64(e.chunksMeshed))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.chunkEvents.WithLabelValues("chunk_created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.chunkEvents.WithLabelValues("chunk_meshed")))
	assert.Equal(t, 1, testutil.CollectAndCount(e.meshDuration))
}

func TestExporterPathfinding(t *testing.T) {
	e := NewExporter(nil)

	e.PathRequested()
	e.PathRequested()
	e.PathRequested()
	assert.Equal(t, 3.0, testutil.ToFloat64(e.pathInflight))

	e.PathCompleted(true, 12, time.Millisecond)
	e.PathCompleted(false, 0, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.pathInflight), "один запрос ещё не доставлен")
	assert.Equal(t, 1.0, testutil.ToFloat64(e.pathRequests.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.pathRequests.WithLabelValues("invalid")))
}

func TestExporterCollect(t *testing.T) {
	e := NewExporter(fakeStats{chunks: 7, dirty: 3})

	proc, err := process.NewProcess(int32(os.Getpid()))
	require.NoError(t, err)
	e.Collect(proc)

	assert.Equal(t, 7.0, testutil.ToFloat64(e.chunks))
	assert.Equal(t, 3.0, testutil.ToFloat64(e.dirtyChunks))
	assert.Greater(t, testutil.ToFloat64(e.processMemory), 0.0, "RSS процесса положителен")
}

func TestExporterRegistryIsolated(t *testing.T) {
	a := NewExporter(nil)
	b := NewExporter(nil)

	a.PathRequested()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.pathInflight), "экспортеры не делят регистр")

	families, err := a.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestExporterStopWithoutStart(t *testing.T) {
	e := NewExporter(nil)
	assert.NotPanics(t, e.Stop)
	assert.NotPanics(t, e.Stop, "повторная остановка безопасна")
}
