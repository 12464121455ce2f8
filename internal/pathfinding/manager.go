package pathfinding

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/tile"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrManagerClosed возвращается при запросе после Shutdown
var ErrManagerClosed = errors.New("менеджер поиска пути остановлен")

// Callback получает результат запроса в потоке, вызвавшем Tick или Shutdown.
// path упорядочен от цели к старту.
type Callback func(valid bool, path []mgl32.Vec3, nodeCount int)

// SnapshotSource источник копий чанков для запросов
type SnapshotSource interface {
	ChunkSize() int
	SnapshotRegion(from, to vec.Vec3) map[vec.Vec3]*tile.ChunkData
}

// Observer получает статистику запросов (например, для метрик)
type Observer interface {
	PathRequested()
	PathCompleted(valid bool, nodeCount int, elapsed time.Duration)
}

// State состояние запроса
type State int32

const (
	StateQueued    State = iota // Ожидает воркера
	StateRunning                // Выполняется
	StateCompleted              // Результат готов, колбэк ещё не вызван
)

// String возвращает строковое представление состояния
func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ManagerConfig параметры менеджера
type ManagerConfig struct {
	Options        Options
	Workers        int // 0 означает число ядер
	SnapshotMargin int // На сколько вокселей снимок шире рамки старт-цель
	Observer       Observer
}

// DefaultManagerConfig возвращает параметры по умолчанию
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Options:        DefaultOptions(),
		SnapshotMargin: 32,
	}
}

type request struct {
	id       uuid.UUID
	job      *Job
	callback Callback
	state    atomic.Int32
	done     chan struct{}
	result   Result
	queued   time.Time
	elapsed  time.Duration
}

// Manager выполняет запросы асинхронно на пуле воркеров и
// опрашивает их раз в тик
type Manager struct {
	source  SnapshotSource
	cfg     ManagerConfig
	pool    pond.Pool
	mu      sync.Mutex
	pending []*request
	closed  bool
	logger  *logging.Logger
	tracer  trace.Tracer
}

// NewManager создаёт менеджер поиска пути
func NewManager(source SnapshotSource, cfg ManagerConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if cfg.SnapshotMargin < 0 {
		cfg.SnapshotMargin = 0
	}
	return &Manager{
		source: source,
		cfg:    cfg,
		pool:   pond.NewPool(workers),
		logger: logging.GetPathfindingLogger(),
		tracer: otel.Tracer("github.com/annel0/voxel-engine/internal/pathfinding"),
	}
}

// RequestPath ставит запрос в очередь. Снимок вокселей снимается сразу,
// поэтому последующие изменения мира на запрос не влияют.
func (m *Manager) RequestPath(start, end vec.Vec3, callback Callback) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return uuid.Nil, ErrManagerClosed
	}

	margin := vec.Vec3{X: m.cfg.SnapshotMargin, Y: m.cfg.SnapshotMargin, Z: m.cfg.SnapshotMargin}
	lo := vec.Vec3{X: min(start.X, end.X), Y: min(start.Y, end.Y), Z: min(start.Z, end.Z)}.Sub(margin)
	hi := vec.Vec3{X: max(start.X, end.X), Y: max(start.Y, end.Y), Z: max(start.Z, end.Z)}.Add(margin)
	grid := NewGrid(m.source.ChunkSize(), m.source.SnapshotRegion(lo, hi))

	r := &request{
		id:       uuid.New(),
		job:      NewJob(grid, start, end, m.cfg.Options),
		callback: callback,
		done:     make(chan struct{}),
		queued:   time.Now(),
	}
	m.pending = append(m.pending, r)

	m.pool.Submit(func() {
		m.run(r)
	})

	if m.cfg.Observer != nil {
		m.cfg.Observer.PathRequested()
	}
	m.logger.Trace("Запрос пути %s: %v -> %v", r.id, start, end)
	return r.id, nil
}

func (m *Manager) run(r *request) {
	defer close(r.done)
	r.state.Store(int32(StateRunning))

	_, span := m.tracer.Start(context.Background(), "pathfinding.job", trace.WithAttributes(
		attribute.String("request.id", r.id.String()),
	))
	defer span.End()

	started := time.Now()
	r.result = r.job.Execute()
	r.elapsed = time.Since(started)

	span.SetAttributes(
		attribute.Bool("path.valid", r.result.Valid),
		attribute.Int("path.nodes", r.result.NodeCount),
	)
	r.state.Store(int32(StateCompleted))
}

// State возвращает состояние ещё не доставленного запроса
func (m *Manager) State(id uuid.UUID) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.pending {
		if r.id == id {
			return State(r.state.Load()), true
		}
	}
	return 0, false
}

// Pending возвращает число недоставленных запросов
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Tick доставляет результаты завершённых запросов и освобождает их память.
// Возвращает число вызванных колбэков.
func (m *Manager) Tick() int {
	m.mu.Lock()
	var finished []*request
	for i := len(m.pending) - 1; i >= 0; i-- {
		r := m.pending[i]
		select {
		case <-r.done:
			finished = append(finished, r)
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
		default:
		}
	}
	m.mu.Unlock()

	for _, r := range finished {
		m.complete(r)
	}
	return len(finished)
}

func (m *Manager) complete(r *request) {
	if r.callback != nil {
		r.callback(r.result.Valid, r.result.Path, r.result.NodeCount)
	}
	if m.cfg.Observer != nil {
		m.cfg.Observer.PathCompleted(r.result.Valid, r.result.NodeCount, r.elapsed)
	}
	r.job.release()
	r.result = Result{}
}

// Shutdown дожидается всех запросов, вызывает их колбэки и
// останавливает пул. Повторный вызов ничего не делает.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		<-pending[i].done
		m.complete(pending[i])
	}
	m.pool.StopAndWait()

	if len(pending) > 0 {
		m.logger.Info("Завершено %d запросов пути при остановке", len(pending))
	}
}
