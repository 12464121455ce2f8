package world

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/mesh"
	"github.com/annel0/voxel-engine/internal/world/tile"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrChunkExists возвращается при попытке создать уже существующий чанк
var ErrChunkExists = errors.New("чанк уже существует")

// World разреженное хранилище чанков.
// Отсутствующий чанк считается воздухом для мешинга и поиска пути.
//
// Мутации мира выполняются из одного потока между фазами мешинга;
// мьютекс защищает только карту чанков от чтения снимков из других горутин.
type World struct {
	chunkSize int
	chunks    map[vec.Vec3]*Chunk
	mesher    *mesh.Mesher
	listeners []Listener
	tickID    uint64
	mu        sync.RWMutex
	logger    *logging.Logger
	tracer    trace.Tracer
}

// NewWorld создаёт пустой мир. mesher может быть nil, тогда Tick не строит меши.
func NewWorld(chunkSize int, mesher *mesh.Mesher) *World {
	if chunkSize <= 0 {
		chunkSize = tile.DefaultChunkSize
	}
	return &World{
		chunkSize: chunkSize,
		chunks:    make(map[vec.Vec3]*Chunk),
		mesher:    mesher,
		logger:    logging.GetWorldLogger(),
		tracer:    otel.Tracer("github.com/annel0/voxel-engine/internal/world"),
	}
}

// ChunkSize возвращает длину стороны чанка
func (w *World) ChunkSize() int {
	return w.chunkSize
}

// Subscribe добавляет слушателя событий мира
func (w *World) Subscribe(l Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

func (w *World) publish(e ChunkEvent) {
	w.mu.RLock()
	listeners := w.listeners
	w.mu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}

// WorldToChunk возвращает координаты чанка, содержащего воксель
func (w *World) WorldToChunk(p vec.Vec3) vec.Vec3 {
	return p.ToChunkCoords(w.chunkSize)
}

// GetChunk возвращает чанк по координатам
func (w *World) GetChunk(coords vec.Vec3) (*Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[coords]
	return c, ok
}

// ChunkCount возвращает количество чанков
func (w *World) ChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// ChunkCoords возвращает отсортированные координаты всех чанков
func (w *World) ChunkCoords() []vec.Vec3 {
	w.mu.RLock()
	coords := make([]vec.Vec3, 0, len(w.chunks))
	for c := range w.chunks {
		coords = append(coords, c)
	}
	w.mu.RUnlock()

	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return coords
}

// CreateChunk добавляет чанк с готовыми данными. Чанк и его соседи
// помечаются грязными, чтобы пересчитать грани на границе.
func (w *World) CreateChunk(coords vec.Vec3, data *tile.ChunkData) (*Chunk, error) {
	return w.createChunk(coords, data, true)
}

// CreateEmptyChunk добавляет полностью воздушный чанк.
// Пустой чанк не меняет геометрию соседей, поэтому они не помечаются.
func (w *World) CreateEmptyChunk(coords vec.Vec3) (*Chunk, error) {
	return w.createChunk(coords, tile.NewChunkData(w.chunkSize), false)
}

func (w *World) createChunk(coords vec.Vec3, data *tile.ChunkData, dirtyNeighbors bool) (*Chunk, error) {
	if data.Size() != w.chunkSize {
		return nil, fmt.Errorf("размер данных чанка %d не совпадает с размером мира %d", data.Size(), w.chunkSize)
	}

	w.mu.Lock()
	if _, exists := w.chunks[coords]; exists {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrChunkExists, coords)
	}
	chunk := NewChunk(coords, data)
	w.chunks[coords] = chunk
	w.mu.Unlock()

	if dirtyNeighbors {
		w.markNeighborChunksDirty(coords)
	}
	w.publish(ChunkEvent{Type: EventChunkCreated, Coords: coords})
	return chunk, nil
}

// DeleteChunk удаляет чанк. Соседи помечаются грязными,
// так как их граничные грани становятся видимыми.
func (w *World) DeleteChunk(coords vec.Vec3) bool {
	w.mu.Lock()
	_, exists := w.chunks[coords]
	if exists {
		delete(w.chunks, coords)
	}
	w.mu.Unlock()

	if !exists {
		return false
	}
	w.markNeighborChunksDirty(coords)
	w.publish(ChunkEvent{Type: EventChunkDeleted, Coords: coords})
	return true
}

// Clear удаляет все чанки
func (w *World) Clear() {
	for _, coords := range w.ChunkCoords() {
		w.DeleteChunk(coords)
	}
}

// SetVoxelTile записывает тайл в мировых координатах.
// Отсутствующий чанк создаётся пустым. Грязными помечаются чанк-владелец
// и все существующие чанки, содержащие соседей вокселя в окрестности ±1.
func (w *World) SetVoxelTile(p vec.Vec3, assetID uint16, model tile.ModelType, rotation tile.Rotation) {
	w.SetVoxel(p, tile.New(assetID, model, rotation))
}

// SetVoxel записывает готовый тайл в мировых координатах
func (w *World) SetVoxel(p vec.Vec3, t tile.TileData) {
	coords, local := p.SplitChunk(w.chunkSize)

	chunk, ok := w.GetChunk(coords)
	if !ok {
		var err error
		chunk, err = w.CreateEmptyChunk(coords)
		if err != nil {
			// чанк мог появиться между проверкой и созданием
			chunk, _ = w.GetChunk(coords)
		}
	}

	chunk.setTile(local, t)
	w.updateSurroundingChunks(p)
}

// ClearVoxelTile заменяет тайл воздухом
func (w *World) ClearVoxelTile(p vec.Vec3) {
	w.SetVoxelTile(p, tile.AirAssetID, tile.ModelCube, 0)
}

// TryGetVoxelTile возвращает тайл; false, если чанк не существует
func (w *World) TryGetVoxelTile(p vec.Vec3) (tile.TileData, bool) {
	coords, local := p.SplitChunk(w.chunkSize)
	chunk, ok := w.GetChunk(coords)
	if !ok {
		return tile.Air, false
	}
	chunk.Mu.RLock()
	defer chunk.Mu.RUnlock()
	return chunk.data.GetTile(local), true
}

// FillRegion заполняет прямоугольную область (включительно) одним тайлом
func (w *World) FillRegion(from, to vec.Vec3, t tile.TileData) int {
	lo := vec.Vec3{X: min(from.X, to.X), Y: min(from.Y, to.Y), Z: min(from.Z, to.Z)}
	hi := vec.Vec3{X: max(from.X, to.X), Y: max(from.Y, to.Y), Z: max(from.Z, to.Z)}

	count := 0
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				w.SetVoxel(vec.Vec3{X: x, Y: y, Z: z}, t)
				count++
			}
		}
	}
	return count
}

// ClearRegion заполняет область воздухом
func (w *World) ClearRegion(from, to vec.Vec3) int {
	return w.FillRegion(from, to, tile.Air)
}

// updateSurroundingChunks помечает грязными все существующие чанки,
// содержащие воксели p+(dx,dy,dz), d ∈ [-1,1]³
func (w *World) updateSurroundingChunks(p vec.Vec3) {
	seen := make(map[vec.Vec3]struct{}, 8)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				coords := p.Add(vec.Vec3{X: dx, Y: dy, Z: dz}).ToChunkCoords(w.chunkSize)
				if _, done := seen[coords]; done {
					continue
				}
				seen[coords] = struct{}{}
				if chunk, ok := w.GetChunk(coords); ok {
					chunk.MarkDirty()
				}
			}
		}
	}
}

// markNeighborChunksDirty помечает грязными 26 соседей чанка
func (w *World) markNeighborChunksDirty(coords vec.Vec3) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				if chunk, ok := w.GetChunk(coords.Add(vec.Vec3{X: dx, Y: dy, Z: dz})); ok {
					chunk.MarkDirty()
				}
			}
		}
	}
}

// MarkAllDirty помечает все чанки для перестроения (после загрузки мира)
func (w *World) MarkAllDirty() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, chunk := range w.chunks {
		chunk.MarkDirty()
	}
}

// DirtyChunks возвращает отсортированные координаты грязных чанков
func (w *World) DirtyChunks() []vec.Vec3 {
	var dirty []vec.Vec3
	for _, coords := range w.ChunkCoords() {
		if chunk, ok := w.GetChunk(coords); ok && chunk.IsDirty() {
			dirty = append(dirty, coords)
		}
	}
	return dirty
}

// DirtyCount возвращает число грязных чанков
func (w *World) DirtyCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	count := 0
	for _, chunk := range w.chunks {
		if chunk.IsDirty() {
			count++
		}
	}
	return count
}

// GetSurroundingChunks возвращает данные существующих чанков окрестности 3×3×3.
// Отсутствующие чанки в результат не попадают.
func (w *World) GetSurroundingChunks(coords vec.Vec3) map[vec.Vec3]*tile.ChunkData {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(map[vec.Vec3]*tile.ChunkData, 27)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				c := coords.Add(vec.Vec3{X: dx, Y: dy, Z: dz})
				if chunk, ok := w.chunks[c]; ok {
					out[c] = chunk.data
				}
			}
		}
	}
	return out
}

// SnapshotRegion копирует данные чанков, пересекающих область [from, to]
// в мировых координатах. Копии не разделяют память с миром.
func (w *World) SnapshotRegion(from, to vec.Vec3) map[vec.Vec3]*tile.ChunkData {
	lo := vec.Vec3{X: min(from.X, to.X), Y: min(from.Y, to.Y), Z: min(from.Z, to.Z)}.ToChunkCoords(w.chunkSize)
	hi := vec.Vec3{X: max(from.X, to.X), Y: max(from.Y, to.Y), Z: max(from.Z, to.Z)}.ToChunkCoords(w.chunkSize)

	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(map[vec.Vec3]*tile.ChunkData)
	for coords, chunk := range w.chunks {
		if coords.X < lo.X || coords.X > hi.X || coords.Y < lo.Y || coords.Y > hi.Y || coords.Z < lo.Z || coords.Z > hi.Z {
			continue
		}
		chunk.Mu.RLock()
		out[coords] = chunk.data.Clone()
		chunk.Mu.RUnlock()
	}
	return out
}

// Tick перестраивает меши всех грязных чанков.
// Каждый проход мешинга синхронный. Возвращает число перестроенных чанков.
func (w *World) Tick(ctx context.Context, dt time.Duration) int {
	w.tickID++
	if w.mesher == nil {
		return 0
	}

	rebuilt := 0
	for _, coords := range w.DirtyChunks() {
		if ctx.Err() != nil {
			break
		}
		if w.remesh(ctx, coords) {
			rebuilt++
		}
	}

	if rebuilt > 0 {
		w.logger.Debug("Тик %d: перестроено %d чанков (dt=%s)", w.tickID, rebuilt, dt)
	}
	return rebuilt
}

// RebuildChunk перестраивает меш одного чанка, если он грязный
func (w *World) RebuildChunk(ctx context.Context, coords vec.Vec3) bool {
	if w.mesher == nil {
		return false
	}
	return w.remesh(ctx, coords)
}

func (w *World) remesh(ctx context.Context, coords vec.Vec3) bool {
	chunk, ok := w.GetChunk(coords)
	if !ok {
		return false
	}

	_, span := w.tracer.Start(ctx, "world.remesh", trace.WithAttributes(
		attribute.Int("chunk.x", coords.X),
		attribute.Int("chunk.y", coords.Y),
		attribute.Int("chunk.z", coords.Z),
	))
	defer span.End()

	start := time.Now()
	nb := mesh.NewNeighbors(coords, w.GetSurroundingChunks(coords))
	if !chunk.Update(w.mesher, nb) {
		return false
	}
	elapsed := time.Since(start)

	vertices := chunk.Mesh().VertexCount()
	span.SetAttributes(attribute.Int("mesh.vertices", vertices))

	w.publish(ChunkEvent{
		Type:        EventChunkMeshed,
		Coords:      coords,
		VertexCount: vertices,
		Duration:    elapsed,
	})
	return true
}
